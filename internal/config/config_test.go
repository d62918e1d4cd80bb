package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CHUNK_MAX_CHARS", "")
	t.Setenv("DEDUP_THRESHOLD", "")
	t.Setenv("CLASSIFY_BATCH_SIZE", "")
	t.Setenv("RETRY_BASE_BACKOFF_S", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkMaxChars != 8000 {
		t.Fatalf("expected default chunk max chars 8000, got %d", cfg.ChunkMaxChars)
	}
	if cfg.DedupThreshold != 0.9 {
		t.Fatalf("expected default dedup threshold 0.9, got %v", cfg.DedupThreshold)
	}
	if cfg.ClassifyBatchSize != 3 {
		t.Fatalf("expected default classify batch size 3, got %d", cfg.ClassifyBatchSize)
	}
	if cfg.RetryBaseBackoff != 65*time.Second {
		t.Fatalf("expected default retry base backoff 65s, got %v", cfg.RetryBaseBackoff)
	}
	if cfg.NATSSubject != "documents.process" {
		t.Fatalf("expected default nats subject documents.process, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DEDUP_THRESHOLD", "0.85")
	t.Setenv("CLASSIFY_BATCH_DELAY_MS", "250")
	t.Setenv("MODEL_FAST", "fast-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DedupThreshold != 0.85 {
		t.Fatalf("expected dedup threshold 0.85, got %v", cfg.DedupThreshold)
	}
	if cfg.ClassifyBatchDelay != 250*time.Millisecond {
		t.Fatalf("expected classify batch delay 250ms, got %v", cfg.ClassifyBatchDelay)
	}
	if cfg.ModelFast != "fast-model" {
		t.Fatalf("expected model override, got %q", cfg.ModelFast)
	}
}

func TestLoadAppliesFileOverlayBelowEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "chunk_max_chars: 6000\nmodel_quality: file-model\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CHUNK_MAX_CHARS", "")
	t.Setenv("MODEL_QUALITY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChunkMaxChars != 6000 {
		t.Fatalf("expected file overlay chunk max chars 6000, got %d", cfg.ChunkMaxChars)
	}
	if cfg.ModelQuality != "file-model" {
		t.Fatalf("expected file overlay model, got %q", cfg.ModelQuality)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to win over file, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsUnreadableOverlay(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing overlay file")
	}
}
