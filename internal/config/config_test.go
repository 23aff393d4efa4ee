package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.TickInterval != time.Minute {
		t.Errorf("tick interval = %v", cfg.TickInterval)
	}
	if cfg.DefaultRegion != "greater_manchester" {
		t.Errorf("default region = %q", cfg.DefaultRegion)
	}
	if !cfg.EnableWatcher {
		t.Error("watcher disabled by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TICK_SECONDS", "30")
	t.Setenv("ENABLE_WATCHER", "false")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.TickInterval != 30*time.Second {
		t.Errorf("tick interval = %v", cfg.TickInterval)
	}
	if cfg.EnableWatcher {
		t.Error("watcher not disabled")
	}
}

func TestTickIntervalClamped(t *testing.T) {
	t.Setenv("TICK_SECONDS", "0")
	if cfg := Load(); cfg.TickInterval != time.Second {
		t.Errorf("tick interval = %v, want clamp to 1s", cfg.TickInterval)
	}

	t.Setenv("TICK_SECONDS", "999999")
	if cfg := Load(); cfg.TickInterval != time.Hour {
		t.Errorf("tick interval = %v, want clamp to 1h", cfg.TickInterval)
	}

	t.Setenv("TICK_SECONDS", "not-a-number")
	if cfg := Load(); cfg.TickInterval != time.Minute {
		t.Errorf("tick interval = %v, want default", cfg.TickInterval)
	}
}

func TestLoadRegionsManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	manifest := `regions:
  - id: greater_manchester
    label: Greater Manchester
    csv: gm.csv
  - id: liverpool
    label: Liverpool
    csv: lp.csv
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	regions, err := LoadRegions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].ID != "greater_manchester" || regions[0].CSV != "gm.csv" {
		t.Errorf("region 0 = %+v", regions[0])
	}
	if regions[1].Label != "Liverpool" {
		t.Errorf("region 1 = %+v", regions[1])
	}
}

func TestLoadRegionsMissingFileFallsBack(t *testing.T) {
	regions, err := LoadRegions(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 || regions[0].ID != "greater_manchester" {
		t.Errorf("fallback regions = %+v", regions)
	}
}

func TestLoadRegionsInvalidManifest(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "regions: ["},
		{"empty list", "regions: []"},
		{"missing csv", "regions:\n  - id: gm\n    label: GM\n"},
		{"missing id", "regions:\n  - label: GM\n    csv: gm.csv\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegions(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
