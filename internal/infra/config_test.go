package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("FREE_LIMIT", "")
	t.Setenv("FLOOD_SECONDS", "")
	t.Setenv("MAX_CONCURRENT_SYNTH", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FreeLimit != 30 {
		t.Fatalf("FreeLimit mismatch: got %d want 30", cfg.FreeLimit)
	}
	if cfg.FloodInterval != 5*time.Second {
		t.Fatalf("FloodInterval mismatch: got %s want 5s", cfg.FloodInterval)
	}
	if cfg.ResetWindow != 7*24*time.Hour {
		t.Fatalf("ResetWindow mismatch: got %s want 168h", cfg.ResetWindow)
	}
	if cfg.MaxConcurrentSynth != 3 {
		t.Fatalf("MaxConcurrentSynth mismatch: got %d want 3", cfg.MaxConcurrentSynth)
	}
	if cfg.SampleRate != 48000 {
		t.Fatalf("SampleRate mismatch: got %d want 48000", cfg.SampleRate)
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("FREE_LIMIT", "100")
	t.Setenv("FLOOD_SECONDS", "10")
	t.Setenv("FREE_RESET_DAYS", "1")
	t.Setenv("MAX_CONCURRENT_SYNTH", "8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FreeLimit != 100 {
		t.Fatalf("FreeLimit mismatch: got %d want 100", cfg.FreeLimit)
	}
	if cfg.FloodInterval != 10*time.Second {
		t.Fatalf("FloodInterval mismatch: got %s want 10s", cfg.FloodInterval)
	}
	if cfg.ResetWindow != 24*time.Hour {
		t.Fatalf("ResetWindow mismatch: got %s want 24h", cfg.ResetWindow)
	}
	if cfg.MaxConcurrentSynth != 8 {
		t.Fatalf("MaxConcurrentSynth mismatch: got %d want 8", cfg.MaxConcurrentSynth)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadConfigRejectsZeroCapacity(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("MAX_CONCURRENT_SYNTH", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero MAX_CONCURRENT_SYNTH")
	}
}
