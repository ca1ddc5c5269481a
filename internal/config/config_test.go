package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ReportCacheTTLSeconds != 60 {
		t.Fatalf("expected default TTL 60, got %d", cfg.ReportCacheTTLSeconds)
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "-5")

	cfg := Load()
	if cfg.ReportCacheTTLSeconds != 60 {
		t.Fatalf("expected fallback TTL 60, got %d", cfg.ReportCacheTTLSeconds)
	}
}
