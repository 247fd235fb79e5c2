package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchpaper/internal/config"
	"github.com/matzehuels/glitchpaper/pkg/backend"
	"github.com/matzehuels/glitchpaper/pkg/cache"
	"github.com/matzehuels/glitchpaper/pkg/daemon"
	"github.com/matzehuels/glitchpaper/pkg/discovery"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
	"github.com/matzehuels/glitchpaper/pkg/generator"
	"github.com/matzehuels/glitchpaper/pkg/glitch"
	"github.com/matzehuels/glitchpaper/pkg/rotation"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// runDaemon validates the configuration, renders all frames, and rotates
// until the context is cancelled.
func (c *CLI) runDaemon(cmd *cobra.Command, flags *daemonFlags, args []string) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(cmd, flags, args)
	if err != nil {
		return err
	}
	if cfg.Directory == "" {
		return gperrors.New(gperrors.ErrCodeInvalidDirectory, "no image directory given (pass DIR or set directory in the config file)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, _ = withRun(ctx)
	logger := loggerFromContext(ctx)

	wallpapers, err := c.warmUp(ctx, cfg)
	if err != nil {
		return err
	}

	placement, _ := backend.ParsePlacement(cfg.Placement)
	chain, err := backend.NewChain(cfg.Backends, placement, nil)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	driver := &daemon.Driver{
		Rotation: rotation.New(wallpapers, rotation.Options{Shuffle: cfg.Shuffle, Rand: rng}),
		Player: &backend.Dispatcher{
			Backends: chain,
			Delay:    backend.Delay{Min: cfg.DelayMin.Duration, Max: cfg.DelayMax.Duration},
			Logger:   logger,
		},
		Targets:  cfg.Outputs,
		Period:   cfg.Period.Duration,
		Parallel: cfg.ParallelOutputs,
		Logger:   logger,
	}

	logger.Info("rotating", "wallpapers", len(wallpapers), "period", cfg.Period.Duration, "shuffle", cfg.Shuffle, "backends", backendNames(chain))
	return driver.Run(ctx)
}

// warmUp discovers the images under cfg.Directory and renders every
// missing frame. It fails when no image is usable.
func (c *CLI) warmUp(ctx context.Context, cfg config.Config) ([]rotation.Wallpaper, error) {
	logger := loggerFromContext(ctx)

	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	frames, err := cache.NewFrameCache(dir, glitch.JPEG{})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	logger.Debug("frame cache", "dir", frames.Dir())

	scanner := &discovery.Scanner{
		Converter: discovery.DefaultConverter(),
		OutDir:    frames.ConvertedDir(),
		Exclude:   []string{frames.Dir()},
		Logger:    logger,
	}

	spinner := newSpinner(ctx, "Discovering images...")
	if isatty.IsTerminal(os.Stderr.Fd()) {
		spinner.Start()
	}

	gen := &generator.Generator{
		Cache:    frames,
		Frames:   cfg.Frames,
		Backoff:  cfg.Backoff(),
		Progress: &warmupProgress{spinner: spinner, logger: logger},
		Logger:   logger,
	}

	prog := newProgress(logger)
	wallpapers, stats, err := gen.Generate(ctx, scanner.Images(ctx, cfg.Directory))
	switch {
	case spinner.Cancelled():
		spinner.Stop()
		return nil, ctx.Err()
	case err != nil:
		spinner.StopWithError("Frame generation failed")
		return nil, err
	case len(wallpapers) == 0:
		spinner.StopWithError("No usable images in %s", cfg.Directory)
	default:
		spinner.StopWithSuccess("Prepared %d wallpapers", len(wallpapers))
	}
	prog.done("frames ready", "images", stats.Images, "rendered", stats.Rendered, "cached", stats.Cached)
	printStats(stats)

	if stats.Dropped > 0 {
		printWarning("Dropped %d images that never produced a decodable glitch frame", stats.Dropped)
	}
	if len(wallpapers) == 0 {
		return nil, gperrors.New(gperrors.ErrCodeInvalidDirectory, "no usable images in %s", cfg.Directory)
	}
	return wallpapers, nil
}

// warmupProgress reports generation progress on the spinner.
type warmupProgress struct {
	spinner *Spinner
	logger  *log.Logger
}

func (p *warmupProgress) OnFrame(img source.Image, index, total int, cached bool) {
	p.spinner.SetMessage(fmt.Sprintf("Glitching %s (%d/%d)", img.Name, index+1, total))
}

func (p *warmupProgress) OnImage(img source.Image, done, cached int) {
	p.logger.Debug("image ready", "image", img.Name, "count", done, "cached", cached)
}

func backendNames(chain []backend.Backend) []string {
	names := make([]string, len(chain))
	for i, b := range chain {
		names[i] = b.Name()
	}
	return names
}
