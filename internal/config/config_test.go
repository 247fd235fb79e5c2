package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/glitchpaper/pkg/cache"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
directory = "`+dir+`"
shuffle = false
period = "90s"
frames = 3
delay_min = "10ms"
delay_max = "20ms"
placement = "fit"
backends = ["feh", "gsettings"]
outputs = ["DP-1", "HDMI-A-1"]
parallel_outputs = true
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Directory != dir || cfg.Shuffle || cfg.Frames != 3 || cfg.Placement != "fit" || !cfg.ParallelOutputs {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Period.Duration != 90*time.Second {
		t.Errorf("Period = %v", cfg.Period)
	}
	if cfg.DelayMin.Duration != 10*time.Millisecond || cfg.DelayMax.Duration != 20*time.Millisecond {
		t.Errorf("delays = %v..%v", cfg.DelayMin, cfg.DelayMax)
	}
	if !slices.Equal(cfg.Backends, []string{"feh", "gsettings"}) || len(cfg.Outputs) != 2 {
		t.Errorf("backends = %v, outputs = %v", cfg.Backends, cfg.Outputs)
	}
	// Unset keys keep their defaults.
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want default", cfg.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load optional: %v", err)
	}
	if cfg.Frames != DefaultFrames || !cfg.Shuffle {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	if _, err := Load(path, true); !gperrors.Is(err, gperrors.ErrCodeInvalidConfig) {
		t.Errorf("Load required = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `frame_count = 3`},
		{"bad duration", `period = "soon"`},
		{"wrong type", `frames = "five"`},
		{"syntax", `directory = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), true)
			if !gperrors.Is(err, gperrors.ErrCodeInvalidConfig) {
				t.Errorf("Load = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	valid := Default()
	valid.Directory = dir

	tests := []struct {
		name   string
		modify func(*Config)
		code   gperrors.Code
	}{
		{"valid", func(*Config) {}, ""},
		{"missing directory", func(c *Config) { c.Directory = filepath.Join(dir, "nope") }, gperrors.ErrCodeInvalidDirectory},
		{"zero frames", func(c *Config) { c.Frames = 0 }, gperrors.ErrCodeInvalidFrames},
		{"zero period", func(c *Config) { c.Period.Duration = 0 }, gperrors.ErrCodeInvalidDuration},
		{"inverted delay", func(c *Config) { c.DelayMin.Duration = time.Second }, gperrors.ErrCodeInvalidDuration},
		{"bad placement", func(c *Config) { c.Placement = "diagonal" }, gperrors.ErrCodeInvalidPlacement},
		{"gnome placement", func(c *Config) { c.Placement = "zoom" }, ""},
		{"cache dir is image dir", func(c *Config) { c.CacheDir = dir }, gperrors.ErrCodeInvalidDirectory},
		{"cache dir is image dir unclean", func(c *Config) { c.CacheDir = dir + "/./" }, gperrors.ErrCodeInvalidDirectory},
		{"cache dir inside image dir", func(c *Config) { c.CacheDir = filepath.Join(dir, ".frames") }, ""},
		{"bad backend", func(c *Config) { c.Backends = []string{"xloadimage"} }, gperrors.ErrCodeInvalidBackend},
		{"negative attempts", func(c *Config) { c.MaxAttempts = -1 }, gperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate = %v", err)
				}
				return
			}
			if got := gperrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
			if !gperrors.IsUsage(err) {
				t.Errorf("IsUsage(%v) = false", err)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	cfg := Default()
	if got := cfg.Backoff(); got != cache.DefaultBackoff {
		t.Errorf("Backoff() = %+v, want %+v", got, cache.DefaultBackoff)
	}
	cfg.MaxAttempts = 0
	if got := cfg.Backoff(); got.Attempts != 0 || got.Initial == 0 {
		t.Errorf("unbounded Backoff() = %+v", got)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if got, _ := Path(); got != "/tmp/xdg-config/glitchpaper/config.toml" {
		t.Errorf("Path() = %q", got)
	}
	if got, _ := CacheDir(); got != "/tmp/xdg-cache/glitchpaper" {
		t.Errorf("CacheDir() = %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	if got, _ := CacheDir(); got != filepath.Join(home, ".cache", AppName) {
		t.Errorf("CacheDir() without XDG = %q", got)
	}
}

func TestResolvedCacheDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	cfg := Default()
	cfg.CacheDir = "~/frames"
	if got, _ := cfg.ResolvedCacheDir(); got != filepath.Join(home, "frames") {
		t.Errorf("ResolvedCacheDir() = %q", got)
	}
	cfg.CacheDir = "/var/tmp/frames"
	if got, _ := cfg.ResolvedCacheDir(); got != "/var/tmp/frames" {
		t.Errorf("ResolvedCacheDir() = %q", got)
	}
}
