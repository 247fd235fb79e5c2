package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
	"github.com/matzehuels/glitchpaper/pkg/observability"
)

// ErrNoBackend is wrapped, with code BACKEND_FAILED, when every backend
// failed for a frame.
var ErrNoBackend = errors.New("no backend could display the frame")

// Dispatcher shows frames through an ordered list of backends.
type Dispatcher struct {
	Backends []Backend
	Delay    Delay
	Logger   *log.Logger

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now is the clock used to time backend calls. Nil uses time.Now.
	Now func() time.Time
}

// PlayStats summarizes one transition on one target.
type PlayStats struct {
	Displayed int
	Skipped   int
	Backend   string // last backend that succeeded
	Duration  time.Duration
}

// Display shows a single frame, trying backends from index start onward.
// It returns the index of the backend that succeeded.
func (d *Dispatcher) Display(ctx context.Context, frame, target string, start int) (int, error) {
	var errs []error
	for i := start; i < len(d.Backends); i++ {
		b := d.Backends[i]

		began := d.now()
		err := b.Display(ctx, frame, target)
		observability.Display().OnDisplay(ctx, b.Name(), target, d.now().Sub(began), err)
		if err == nil {
			return i, nil
		}
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}

		d.logger().Debug("backend failed, falling back", "backend", b.Name(), "target", target, "err", err)
		observability.Display().OnFallback(ctx, b.Name(), target, err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	cause := fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
	return -1, gperrors.Wrap(gperrors.ErrCodeBackendFailed, cause, "display %s", filepath.Base(frame))
}

// Play shows frames in order on target as one transition.
//
// Backend selection is sticky within the call: after a backend succeeds,
// later frames start from it and never revisit the ones before it. A
// frame no backend can show is logged and skipped. After each shown frame
// Play sleeps for Delay.Compute of the backend call's duration. Only
// cancellation stops Play early; it then returns ctx.Err().
func (d *Dispatcher) Play(ctx context.Context, frames []string, target string) (stats PlayStats, err error) {
	began := d.now()
	start := 0

	defer func() {
		stats.Duration = d.now().Sub(began)
		observability.Display().OnTransition(ctx, target, stats.Displayed, stats.Skipped, stats.Duration)
	}()

	for _, frame := range frames {
		callStart := d.now()
		idx, err := d.Display(ctx, frame, target, start)
		elapsed := d.now().Sub(callStart)

		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Skipped++
			d.logger().Warn("skipping frame", "frame", frame, "target", target, "err", err)
			continue
		}

		start = idx
		stats.Displayed++
		stats.Backend = d.Backends[idx].Name()

		if err := d.sleep(ctx, d.Delay.Compute(elapsed)); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	return Sleep(ctx, dur)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// Sleep waits for dur or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
