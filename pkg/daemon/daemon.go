// Package daemon drives the wallpaper rotation: one glitch transition per
// period on every display target, forever.
package daemon

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/glitchpaper/pkg/backend"
	"github.com/matzehuels/glitchpaper/pkg/rotation"
)

// DefaultPeriod is the time between transition starts.
const DefaultPeriod = 5 * time.Minute

// Player plays one transition on one target. *backend.Dispatcher
// implements it.
type Player interface {
	Play(ctx context.Context, frames []string, target string) (backend.PlayStats, error)
	Display(ctx context.Context, frame, target string, start int) (int, error)
}

// Driver owns the rotation and advances it once per period.
type Driver struct {
	Rotation *rotation.Rotation
	Player   Player

	// Targets are the display outputs. Target i shows the wallpaper at
	// rotation offset i. No targets means one default target.
	Targets []string

	Period time.Duration

	// Parallel plays the targets' transitions concurrently.
	Parallel bool

	Logger *log.Logger

	// Wait blocks for d or until ctx is done. Nil uses backend.Sleep.
	Wait func(ctx context.Context, d time.Duration) error

	// Now reports the current time. Nil uses time.Now.
	Now func() time.Time
}

// Start shows each target's current wallpaper without glitching.
// Display failures are logged; only cancellation is returned.
func (d *Driver) Start(ctx context.Context) error {
	for i, target := range d.targets() {
		w := d.Rotation.Current(i)
		if _, err := d.Player.Display(ctx, w.Base(), target, 0); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger().Warn("initial wallpaper not shown", "image", w.Image.Name, "target", targetName(target), "err", err)
			continue
		}
		d.logger().Info("showing wallpaper", "image", w.Image.Name, "target", targetName(target))
	}
	return nil
}

// Step plays one transition on every target and advances the rotation
// exactly once, whatever the display outcome.
func (d *Driver) Step(ctx context.Context) error {
	targets := d.targets()

	// One call sequences every target so a wrap reshuffles the list once.
	transitions := d.Rotation.Transitions(len(targets))

	var err error
	if d.Parallel && len(targets) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, target := range targets {
			g.Go(func() error {
				return d.play(gctx, transitions[i], target)
			})
		}
		err = g.Wait()
	} else {
		for i, target := range targets {
			if err = d.play(ctx, transitions[i], target); err != nil {
				break
			}
		}
	}

	d.Rotation.Advance()
	return err
}

func (d *Driver) play(ctx context.Context, t rotation.Transition, target string) error {
	stats, err := d.Player.Play(ctx, t.Frames, target)
	if err != nil {
		return err
	}
	logger := d.logger().With("image", t.Incoming.Image.Name, "target", targetName(target))
	if stats.Displayed == 0 {
		logger.Warn("transition not shown, every frame failed", "frames", len(t.Frames))
		return nil
	}
	logger.Info("transitioned", "backend", stats.Backend, "frames", stats.Displayed, "skipped", stats.Skipped, "took", stats.Duration.Round(time.Millisecond))
	return nil
}

// Run shows the initial wallpapers, then steps once per Period measured
// between transition starts. It returns only when ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}

	period := d.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	last := d.now()
	for {
		if err := d.wait(ctx, period-d.now().Sub(last)); err != nil {
			return err
		}
		last = d.now()
		if err := d.Step(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *Driver) targets() []string {
	if len(d.Targets) == 0 {
		return []string{""}
	}
	return d.Targets
}

func (d *Driver) wait(ctx context.Context, dur time.Duration) error {
	if d.Wait != nil {
		return d.Wait(ctx, dur)
	}
	return backend.Sleep(ctx, dur)
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Driver) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func targetName(target string) string {
	if target == "" {
		return "all"
	}
	return target
}
