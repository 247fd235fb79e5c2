package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchpaper/internal/config"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

const unitName = appName + ".service"

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=Glitch wallpaper rotation
PartOf=graphical-session.target
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.ExecStart}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=graphical-session.target
`))

// installCommand creates the "install" command that writes a systemd user
// unit running the daemon with the given settings.
func (c *CLI) installCommand() *cobra.Command {
	flags := &daemonFlags{}
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "install [flags] DIR",
		Short: "Install a systemd user service that runs the daemon",
		Long: `Install writes a systemd user unit that starts glitchpaper with the
given directory and flags when the graphical session starts.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, flags, args)
			if err != nil {
				return err
			}
			if cfg.Directory == "" {
				return gperrors.New(gperrors.ErrCodeInvalidDirectory, "no image directory given")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			unit, err := renderUnit(exe, cfg)
			if err != nil {
				return err
			}

			if printOnly {
				fmt.Print(unit)
				return nil
			}

			path, err := unitPath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(unit), 0644); err != nil {
				return err
			}

			printSuccess("Installed %s", unitName)
			printFile(path)
			printNewline()
			printNextStep("Enable it with", "systemctl --user daemon-reload && systemctl --user enable --now "+unitName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "write the unit to stdout instead of installing it")
	flags.register(cmd)
	return cmd
}

// renderUnit returns the unit file text for running exe with cfg.
func renderUnit(exe string, cfg config.Config) (string, error) {
	args, err := daemonArgs(cfg)
	if err != nil {
		return "", err
	}
	words := append([]string{exe}, args...)
	for i, w := range words {
		words[i] = systemdQuote(w)
	}

	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, struct{ ExecStart string }{strings.Join(words, " ")}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// daemonArgs returns the command line that reproduces cfg, listing only
// settings that differ from the defaults. Paths are made absolute because
// the service does not start in the caller's directory.
func daemonArgs(cfg config.Config) ([]string, error) {
	def := config.Default()
	var args []string

	if !cfg.Shuffle {
		args = append(args, "--no-shuffle")
	}
	if cfg.Period != def.Period {
		args = append(args, "--period", cfg.Period.String())
	}
	if cfg.Frames != def.Frames {
		args = append(args, "--frames", strconv.Itoa(cfg.Frames))
	}
	if cfg.CacheDir != "" {
		dir, err := cfg.ResolvedCacheDir()
		if err != nil {
			return nil, err
		}
		if dir, err = filepath.Abs(dir); err != nil {
			return nil, err
		}
		args = append(args, "--cache-dir", dir)
	}
	if cfg.DelayMin != def.DelayMin {
		args = append(args, "--delay-min", cfg.DelayMin.String())
	}
	if cfg.DelayMax != def.DelayMax {
		args = append(args, "--delay-max", cfg.DelayMax.String())
	}
	if cfg.Placement != "" && cfg.Placement != def.Placement {
		args = append(args, "--placement", cfg.Placement)
	}
	for _, b := range cfg.Backends {
		args = append(args, "--backend", b)
	}
	for _, o := range cfg.Outputs {
		args = append(args, "--output", o)
	}
	if cfg.ParallelOutputs {
		args = append(args, "--parallel-outputs")
	}
	if cfg.MaxAttempts != def.MaxAttempts {
		args = append(args, "--max-attempts", strconv.Itoa(cfg.MaxAttempts))
	}

	dir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return nil, err
	}
	return append(args, dir), nil
}

// systemdQuote quotes s for an ExecStart line when it needs it.
// systemd expands "%" specifiers and "$" variables, so both are doubled.
func systemdQuote(s string) string {
	s = strings.NewReplacer("%", "%%", "$", "$$").Replace(s)
	if s != "" && !strings.ContainsAny(s, " \t\"'\\;") {
		return s
	}
	return strconv.Quote(s)
}

// unitPath returns $XDG_CONFIG_HOME/systemd/user/glitchpaper.service.
func unitPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "systemd", "user", unitName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "systemd", "user", unitName), nil
}
