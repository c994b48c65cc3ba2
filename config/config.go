// Package config loads service settings from the environment
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"phase-stego-backend/models"
	"phase-stego-backend/stego"
)

// DefaultMinPSNR is the quality threshold, in dB, for stego output.
const DefaultMinPSNR = 30.0

type Config struct {
	Port             string
	AllowedOrigins   []string
	MaxUploadBytes   int64
	Workers          int
	CarrierAmplitude float64
	MinPSNR          float64
	LogLevel         logrus.Level
}

// Load reads the configuration, falling back to defaults for unset or empty
// variables. A malformed value is an error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxUploadBytes:   32 << 20,
		Workers:          runtime.GOMAXPROCS(0),
		CarrierAmplitude: stego.DefaultCarrierAmplitude,
		MinPSNR:          DefaultMinPSNR,
		LogLevel:         logrus.InfoLevel,
	}

	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = int64(mb) << 20
	}

	if v := os.Getenv("STEGO_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil || workers <= 0 {
			return nil, fmt.Errorf("STEGO_WORKERS must be a positive integer, got %q", v)
		}
		cfg.Workers = workers
	}

	if v := os.Getenv("CARRIER_AMPLITUDE"); v != "" {
		amplitude, err := strconv.ParseFloat(v, 64)
		if err != nil || amplitude < 0 {
			return nil, fmt.Errorf("CARRIER_AMPLITUDE must be a non-negative number, got %q", v)
		}
		cfg.CarrierAmplitude = amplitude
	}

	if v := os.Getenv("MIN_PSNR_DB"); v != "" {
		psnr, err := strconv.ParseFloat(v, 64)
		if err != nil || psnr < 0 {
			return nil, fmt.Errorf("MIN_PSNR_DB must be a non-negative number, got %q", v)
		}
		cfg.MinPSNR = psnr
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// StegoConfig converts the settings into phase coder options. An amplitude
// of zero turns the carrier floor off.
func (c *Config) StegoConfig() *models.StegoConfig {
	return &models.StegoConfig{
		Workers:          c.Workers,
		CarrierAmplitude: c.CarrierAmplitude,
		NoCarrierFloor:   c.CarrierAmplitude == 0,
		MinPSNR:          c.MinPSNR,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
