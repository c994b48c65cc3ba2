package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"phase-stego-backend/audio"
	"phase-stego-backend/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeCover(t *testing.T, dir string, frames int) string {
	t.Helper()
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16((i*7919)%4001 - 2000)
	}

	data, err := audio.NewAudioDecoder(quietLogger()).EncodeWAV(&models.AudioBuffer{
		Samples:    samples,
		SampleRate: 22050,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	path := filepath.Join(dir, "cover.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestEmbedExtractFiles(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 8000)
	stegoPath := filepath.Join(dir, "stego.wav")
	secretPath := filepath.Join(dir, "secret.bin")
	outPath := filepath.Join(dir, "out.bin")
	secret := []byte("\x01\x02hidden\xff")

	if err := os.WriteFile(secretPath, secret, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx := context.Background()
	logger := quietLogger()

	if err := run(ctx, []string{"embed", "-in", cover, "-out", stegoPath, "-msg-file", secretPath, "-workers", "3"}, logger); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if err := run(ctx, []string{"extract", "-in", stegoPath, "-bytes", "9", "-out", outPath}, logger); err != nil {
		t.Fatalf("extract: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("extracted %q, want %q", got, secret)
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 512)
	logger := quietLogger()

	tests := []struct {
		name string
		args []string
	}{
		{"no_command", nil},
		{"unknown_command", []string{"hide"}},
		{"embed_without_out", []string{"embed", "-in", cover, "-msg", "x"}},
		{"embed_without_message", []string{"embed", "-in", cover, "-out", filepath.Join(dir, "o.wav")}},
		{"embed_both_messages", []string{"embed", "-in", cover, "-out", filepath.Join(dir, "o.wav"), "-msg", "x", "-msg-file", cover}},
		{"embed_negative_amplitude", []string{"embed", "-in", cover, "-out", filepath.Join(dir, "o.wav"), "-msg", "x", "-amplitude", "-1"}},
		{"embed_missing_file", []string{"embed", "-in", filepath.Join(dir, "none.wav"), "-out", filepath.Join(dir, "o.wav"), "-msg", "x"}},
		{"embed_too_large", []string{"embed", "-in", cover, "-out", filepath.Join(dir, "o.wav"), "-msg", string(make([]byte, 200))}},
		{"extract_without_length", []string{"extract", "-in", cover}},
		{"capacity_without_input", []string{"capacity"}},
		{"compare_length_mismatch", []string{"compare", "-a", "ab", "-b", "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.args, logger); err == nil {
				t.Fatalf("run(%q) succeeded", tt.args)
			}
		})
	}
}
