package config

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.SweepSchedule != "@daily" {
		t.Errorf("SweepSchedule = %q, want default @daily", cfg.SweepSchedule)
	}
	if cfg.JWTSecret == "" {
		t.Error("JWTSecret should never be empty")
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SWEEP_SCHEDULE", "@hourly")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("Port = %q, want 9191", cfg.Port)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.SweepSchedule != "@hourly" {
		t.Errorf("SweepSchedule = %q, want @hourly", cfg.SweepSchedule)
	}
}
