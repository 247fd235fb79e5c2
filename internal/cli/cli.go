package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchpaper/internal/config"
	"github.com/matzehuels/glitchpaper/pkg/buildinfo"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cacheDir   string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself runs the daemon.
func (c *CLI) RootCommand() *cobra.Command {
	flags := &daemonFlags{}

	root := &cobra.Command{
		Use:   "glitchpaper [flags] DIR",
		Short: "Glitchpaper rotates wallpapers with glitch transitions",
		Long: `Glitchpaper rotates the desktop wallpaper through a directory of images.
Each change plays a short burst of corrupted-JPEG frames between the
outgoing and the incoming image. Frames are rendered once and cached.`,
		Version:       buildinfo.Version,
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
				registerDebugHooks(c.Logger)
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDaemon(cmd, flags, args)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return gperrors.Wrap(gperrors.ErrCodeInvalidInput, err, "invalid flags")
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/glitchpaper/config.toml)")
	pf.StringVar(&c.cacheDir, "cache-dir", "", "frame cache directory (default $XDG_CACHE_HOME/glitchpaper)")

	flags.register(root)

	root.AddCommand(c.installCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// maxArgs is cobra.MaximumNArgs with a usage error code, so the caller can
// tell argument mistakes from runtime failures.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return gperrors.New(gperrors.ErrCodeInvalidInput, "accepts at most %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}

// =============================================================================
// Config Resolution
// =============================================================================

// loadConfig layers the config file, the daemon flags, and the positional
// directory over the defaults. flags may be nil for commands without them.
func (c *CLI) loadConfig(cmd *cobra.Command, flags *daemonFlags, args []string) (config.Config, error) {
	cfg := config.Default()

	path, required := c.configPath, c.configPath != ""
	if path == "" {
		p, err := config.Path()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		loaded, err := config.Load(path, required)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags != nil {
		flags.apply(cmd, &cfg)
	}
	if c.cacheDir != "" {
		cfg.CacheDir = c.cacheDir
	}
	if len(args) > 0 {
		cfg.Directory = args[0]
	}
	return cfg, nil
}

// resolveCacheDir returns the cache directory for commands that only need
// the cache, honoring --cache-dir and the config file.
func (c *CLI) resolveCacheDir(cmd *cobra.Command) (string, error) {
	cfg, err := c.loadConfig(cmd, nil, nil)
	if err != nil {
		return "", err
	}
	return cfg.ResolvedCacheDir()
}
