package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"phase-stego-backend/config"
	"phase-stego-backend/handlers"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	router := newRouter(cfg, logger)

	logger.WithFields(logrus.Fields{
		"port":              cfg.Port,
		"workers":           cfg.Workers,
		"carrier_amplitude": cfg.CarrierAmplitude,
		"min_psnr":          cfg.MinPSNR,
		"max_upload_bytes":  cfg.MaxUploadBytes,
	}).Info("Server starting")
	logger.Info("API endpoints:")
	logger.Info("  POST /api/v1/stego/insert   - Hide a message in WAV/MP3/FLAC audio (returns stego WAV)")
	logger.Info("  POST /api/v1/stego/extract  - Recover a message given its bit count or byte length")
	logger.Info("  POST /api/v1/stego/capacity - Report how many bytes an audio file can carry")
	logger.Info("  POST /api/v1/stego/compare  - Bit error rate between two messages")
	logger.Info("  GET  /api/v1/health         - Health check")

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func newRouter(cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", handlers.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{
		"Content-Disposition",
		handlers.RequestIDHeader,
		"X-Stego-Method",
		"X-Stego-Bit-Count",
		"X-Stego-Segment-Length",
		"X-Stego-Segments",
		"X-Stego-Capacity",
		"X-Stego-PSNR",
		"X-Stego-Clipped",
		"X-Stego-Quality",
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	stegoHandler := handlers.NewStegoHandler(cfg.StegoConfig(), cfg.MaxUploadBytes, logger)

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/insert", stegoHandler.InsertMessage)
			stego.POST("/extract", stegoHandler.ExtractMessage)
			stego.POST("/capacity", stegoHandler.Capacity)
			stego.POST("/compare", stegoHandler.CompareMessages)
		}
	}

	return router
}
