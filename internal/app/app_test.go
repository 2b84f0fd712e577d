package app

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("postgres must be opt-in, got %s", cfg.PostgresDSN)
	}
}
