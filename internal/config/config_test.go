package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Extraction.Mode != ModeHybrid {
		t.Errorf("expected hybrid mode, got %s", cfg.Extraction.Mode)
	}
	if !cfg.Validation.Enabled {
		t.Error("validation should be enabled by default")
	}
	if cfg.Validation.Tolerance != 0.02 {
		t.Errorf("expected tolerance 0.02, got %v", cfg.Validation.Tolerance)
	}
	if cfg.Plugins.MinConfidence != 0.5 {
		t.Errorf("expected min confidence 0.5, got %v", cfg.Plugins.MinConfidence)
	}
	if cfg.Plugins.Force != "" {
		t.Errorf("no plugin should be forced by default, got %q", cfg.Plugins.Force)
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{ModeHybrid, ModePageOnly, ModeLogicalOnly} {
		if !ValidMode(mode) {
			t.Errorf("mode %s should be valid", mode)
		}
	}
	if ValidMode("everything") {
		t.Error("unknown mode accepted")
	}
	if ValidMode("") {
		t.Error("empty mode accepted")
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
extraction:
  mode: logical_only
validation:
  enabled: false
  tolerance: 0.1
plugins:
  force: marksdist
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Extraction.Mode != ModeLogicalOnly {
			t.Errorf("expected logical_only, got %s", cfg.Extraction.Mode)
		}
		if cfg.Validation.Enabled {
			t.Error("expected validation disabled")
		}
		if cfg.Validation.Tolerance != 0.1 {
			t.Errorf("expected tolerance 0.1, got %v", cfg.Validation.Tolerance)
		}
		if cfg.Plugins.Force != "marksdist" {
			t.Errorf("expected forced plugin marksdist, got %q", cfg.Plugins.Force)
		}
	})

	t.Run("rejects unknown extraction mode", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configFile, []byte("extraction:\n  mode: sideways\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		if _, err := NewManager(configFile); err == nil {
			t.Fatal("expected an error for unknown mode")
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("failed to write default config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# docutura configuration") {
		t.Error("written config should start with the comment header")
	}

	// The written file must load back cleanly.
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default config does not load: %v", err)
	}
	if mgr.Get().Extraction.Mode != ModeHybrid {
		t.Errorf("expected hybrid mode, got %s", mgr.Get().Extraction.Mode)
	}
}
