// Package config loads glitchpaper settings from a TOML file.
//
// Settings resolve in three layers: built-in defaults, then the config
// file, then command-line flags. The CLI applies the last layer by
// overwriting only the fields whose flags were set.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/glitchpaper/pkg/backend"
	"github.com/matzehuels/glitchpaper/pkg/cache"
	"github.com/matzehuels/glitchpaper/pkg/daemon"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "glitchpaper"

// Defaults.
const (
	DefaultFrames      = 5
	DefaultMaxAttempts = 100
)

// Config holds every daemon setting.
type Config struct {
	Directory       string   `toml:"directory"`
	Shuffle         bool     `toml:"shuffle"`
	Period          Duration `toml:"period"`
	Frames          int      `toml:"frames"`
	CacheDir        string   `toml:"cache_dir"`
	DelayMin        Duration `toml:"delay_min"`
	DelayMax        Duration `toml:"delay_max"`
	Placement       string   `toml:"placement"`
	Backends        []string `toml:"backends"`
	Outputs         []string `toml:"outputs"`
	MaxAttempts     int      `toml:"max_attempts"`
	ParallelOutputs bool     `toml:"parallel_outputs"`
}

// Duration is a time.Duration written as a string such as "5m" or "80ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Shuffle:     true,
		Period:      Duration{daemon.DefaultPeriod},
		Frames:      DefaultFrames,
		DelayMin:    Duration{backend.DefaultDelayMin},
		DelayMax:    Duration{backend.DefaultDelayMax},
		Placement:   string(backend.PlacementFill),
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Path returns the default config file location:
// $XDG_CONFIG_HOME/glitchpaper/config.toml, else ~/.config/glitchpaper/config.toml.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default cache directory:
// $XDG_CACHE_HOME/glitchpaper, else ~/.cache/glitchpaper.
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults unless required is set. Unknown keys are rejected.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return Default(), nil
	}
	if err != nil {
		return cfg, gperrors.Wrap(gperrors.ErrCodeInvalidConfig, err, "cannot load config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, gperrors.New(gperrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if dir, err := expandHome(cfg.Directory); err == nil {
		cfg.Directory = dir
	}
	return cfg, nil
}

// Validate checks every setting and returns the first problem found as
// an INVALID_* error.
func (c Config) Validate() error {
	if err := gperrors.ValidateDirectory(c.Directory); err != nil {
		return err
	}
	if dir, err := c.ResolvedCacheDir(); err == nil && samePath(dir, c.Directory) {
		return gperrors.New(gperrors.ErrCodeInvalidDirectory, "cache_dir %s is the image directory; use a separate directory for frames", dir)
	}
	if err := gperrors.ValidateFrames(c.Frames); err != nil {
		return err
	}
	if err := gperrors.ValidatePeriod(c.Period.Duration); err != nil {
		return err
	}
	if err := gperrors.ValidateDelayRange(c.DelayMin.Duration, c.DelayMax.Duration); err != nil {
		return err
	}
	placement, err := backend.ParsePlacement(c.Placement)
	if err != nil {
		return err
	}
	if _, err := backend.NewChain(c.Backends, placement, nil); err != nil {
		return err
	}
	if c.MaxAttempts < 0 {
		return gperrors.New(gperrors.ErrCodeInvalidInput, "max attempts cannot be negative, got %d", c.MaxAttempts)
	}
	return nil
}

// Backoff returns the transform retry policy. MaxAttempts zero retries
// without bound.
func (c Config) Backoff() cache.Backoff {
	b := cache.DefaultBackoff
	b.Attempts = c.MaxAttempts
	return b
}

// ResolvedCacheDir returns CacheDir, or the default when it is empty.
// A leading "~/" is expanded.
func (c Config) ResolvedCacheDir() (string, error) {
	if c.CacheDir == "" {
		return CacheDir()
	}
	return expandHome(c.CacheDir)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func expandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}
