package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port == "" {
		t.Error("port should default")
	}
	if cfg.LogLevel == "" {
		t.Error("log level should default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9100" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.AllowedOrigins != "https://example.com" {
		t.Errorf("allowed origins = %q", cfg.AllowedOrigins)
	}
}
