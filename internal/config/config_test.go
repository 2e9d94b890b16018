package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Data.Dir == "" {
		t.Error("default data dir must not be empty")
	}
	if cfg.Manifest.URL != DefaultManifestURL {
		t.Errorf("manifest url = %q, want %q", cfg.Manifest.URL, DefaultManifestURL)
	}
	// Public instances stay off until a country is configured.
	if cfg.Manifest.Country != "" {
		t.Errorf("manifest country = %q, want empty", cfg.Manifest.Country)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("log level = %q, want INFO", cfg.Logging.Level)
	}
	if !strings.HasSuffix(cfg.Logging.File, "tubular.log") {
		t.Errorf("log file = %q, want a tubular.log path", cfg.Logging.File)
	}
}
