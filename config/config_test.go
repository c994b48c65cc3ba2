package config

import (
	"testing"

	"github.com/sirupsen/logrus"

	"phase-stego-backend/stego"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ALLOWED_ORIGINS", "MAX_UPLOAD_MB", "STEGO_WORKERS", "CARRIER_AMPLITUDE", "MIN_PSNR_DB", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.Workers <= 0 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.CarrierAmplitude != stego.DefaultCarrierAmplitude || cfg.StegoConfig().NoCarrierFloor {
		t.Errorf("CarrierAmplitude = %v", cfg.CarrierAmplitude)
	}
	if cfg.StegoConfig().MinPSNR != DefaultMinPSNR {
		t.Errorf("MinPSNR = %v, want %v", cfg.StegoConfig().MinPSNR, DefaultMinPSNR)
	}
	if cfg.LogLevel != logrus.InfoLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example,,")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("STEGO_WORKERS", "3")
	t.Setenv("CARRIER_AMPLITUDE", "0")
	t.Setenv("MIN_PSNR_DB", "0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MaxUploadBytes != 8<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.LogLevel != logrus.DebugLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}

	sc := cfg.StegoConfig()
	if sc.Workers != 3 || !sc.NoCarrierFloor || sc.MinPSNR != 0 {
		t.Errorf("StegoConfig = %+v", sc)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MAX_UPLOAD_MB", "lots"},
		{"MAX_UPLOAD_MB", "-1"},
		{"STEGO_WORKERS", "0"},
		{"CARRIER_AMPLITUDE", "-2"},
		{"MIN_PSNR_DB", "-10"},
		{"MIN_PSNR_DB", "high"},
		{"LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
