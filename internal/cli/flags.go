package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchpaper/internal/config"
	"github.com/matzehuels/glitchpaper/pkg/backend"
	"github.com/matzehuels/glitchpaper/pkg/daemon"
)

// daemonFlags holds the flags shared by the daemon and install commands.
type daemonFlags struct {
	noShuffle   bool
	period      time.Duration
	frames      int
	delayMin    time.Duration
	delayMax    time.Duration
	placement   string
	backends    []string
	outputs     []string
	parallel    bool
	maxAttempts int
}

func (f *daemonFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.noShuffle, "no-shuffle", false, "rotate in discovery order")
	fs.DurationVarP(&f.period, "period", "p", daemon.DefaultPeriod, "time between transitions")
	fs.IntVarP(&f.frames, "frames", "n", config.DefaultFrames, "glitch frames per image")
	fs.DurationVar(&f.delayMin, "delay-min", backend.DefaultDelayMin, "minimum pause between frames")
	fs.DurationVar(&f.delayMax, "delay-max", backend.DefaultDelayMax, "maximum pause between frames")
	fs.StringVar(&f.placement, "placement", string(backend.PlacementFill), "image placement: fill, fit, center, tile, stretch, span")
	fs.StringSliceVar(&f.backends, "backend", nil, "display backend, repeatable, tried in order (default swww,swaymsg,feh,gsettings)")
	fs.StringSliceVarP(&f.outputs, "output", "o", nil, "display output, repeatable (default all)")
	fs.BoolVar(&f.parallel, "parallel-outputs", false, "play transitions on all outputs at once")
	fs.IntVar(&f.maxAttempts, "max-attempts", config.DefaultMaxAttempts, "glitch attempts per frame before dropping an image (0 = unlimited)")

	registerCompletions(cmd)
}

// apply copies every flag the user set onto cfg.
func (f *daemonFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("no-shuffle") {
		cfg.Shuffle = !f.noShuffle
	}
	if changed("period") {
		cfg.Period.Duration = f.period
	}
	if changed("frames") {
		cfg.Frames = f.frames
	}
	if changed("delay-min") {
		cfg.DelayMin.Duration = f.delayMin
	}
	if changed("delay-max") {
		cfg.DelayMax.Duration = f.delayMax
	}
	if changed("placement") {
		cfg.Placement = f.placement
	}
	if changed("backend") {
		cfg.Backends = f.backends
	}
	if changed("output") {
		cfg.Outputs = f.outputs
	}
	if changed("parallel-outputs") {
		cfg.ParallelOutputs = f.parallel
	}
	if changed("max-attempts") {
		cfg.MaxAttempts = f.maxAttempts
	}
}
