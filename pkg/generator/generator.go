// Package generator renders the glitch frames for every discovered image
// and assembles the wallpaper list the rotation plays.
//
// Generation is a blocking warm-up that runs before the first transition.
// Frames already in the cache are reused, so only new images cost time.
package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/cache"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
	"github.com/matzehuels/glitchpaper/pkg/glitch"
	"github.com/matzehuels/glitchpaper/pkg/rotation"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// Progress receives advisory warm-up events. Implementations must not block.
type Progress interface {
	OnFrame(img source.Image, index, total int, cached bool)
	OnImage(img source.Image, done int, cached int)
}

type noopProgress struct{}

func (noopProgress) OnFrame(source.Image, int, int, bool) {}
func (noopProgress) OnImage(source.Image, int, int)       {}

// Generator ensures every image has its frames rendered.
type Generator struct {
	Cache  *cache.FrameCache
	Frames int

	// Backoff bounds re-rendering after transform failures.
	// The zero value means cache.DefaultBackoff.
	Backoff cache.Backoff

	Rand     *rand.Rand
	Progress Progress
	Logger   *log.Logger
}

// Stats summarizes a Generate run.
type Stats struct {
	Images   int // images in the result
	Dropped  int // images abandoned after exhausting retries
	Rendered int // frames rendered in this run
	Cached   int // frames found in the cache
	Attempts int // transform invocations, including failed ones
}

// Wallpaper ensures all frames of img exist and returns its entry.
// Frames come back in generation order.
func (g *Generator) Wallpaper(ctx context.Context, img source.Image) (rotation.Wallpaper, Stats, error) {
	var stats Stats
	frames := make([]string, 0, g.Frames)

	for i := range g.Frames {
		var (
			path string
			hit  bool
		)
		err := cache.Retry(ctx, g.backoff(), func(attempt int) error {
			params := glitch.RandomParams(g.rand())
			var err error
			path, hit, err = g.Cache.EnsureFrame(ctx, img, i, params)
			if !hit {
				stats.Attempts++
			}
			if err != nil && cache.IsRetryable(err) {
				g.logger().Debug("glitch attempt failed", "image", img.Name, "frame", i, "attempt", attempt+1, "err", err)
			}
			return err
		})
		if errors.Is(err, cache.ErrExhausted) {
			return rotation.Wallpaper{}, stats, gperrors.Wrap(gperrors.ErrCodeTransformFailed, err, "frame %d of %s", i, img.Name)
		}
		if err != nil {
			return rotation.Wallpaper{}, stats, fmt.Errorf("frame %d of %s: %w", i, img.Name, err)
		}

		if hit {
			stats.Cached++
		} else {
			stats.Rendered++
		}
		frames = append(frames, path)
		g.progress().OnFrame(img, i, g.Frames, hit)
	}

	stats.Images = 1
	return rotation.Wallpaper{Image: img, Frames: frames}, stats, nil
}

// Generate builds the wallpaper list for every image the sequence yields.
// An image whose frames cannot be rendered within the retry budget is
// dropped with an error diagnostic; the run continues with the next one.
// Only cancellation and I/O failures abort the whole run.
func (g *Generator) Generate(ctx context.Context, images iter.Seq[source.Image]) ([]rotation.Wallpaper, Stats, error) {
	var (
		total      Stats
		wallpapers []rotation.Wallpaper
	)

	for img := range images {
		w, stats, err := g.Wallpaper(ctx, img)
		total.Rendered += stats.Rendered
		total.Cached += stats.Cached
		total.Attempts += stats.Attempts

		switch {
		case err == nil:
			wallpapers = append(wallpapers, w)
			total.Images++
			g.progress().OnImage(img, total.Images, stats.Cached)
		case errors.Is(err, cache.ErrExhausted):
			total.Dropped++
			g.logger().Error("dropping image, no decodable glitch frame", "image", img.Name, "path", img.Path, "err", err)
		default:
			return wallpapers, total, err
		}
	}

	if err := ctx.Err(); err != nil {
		return wallpapers, total, err
	}
	return wallpapers, total, nil
}

func (g *Generator) backoff() cache.Backoff {
	if g.Backoff == (cache.Backoff{}) {
		return cache.DefaultBackoff
	}
	return g.Backoff
}

func (g *Generator) rand() *rand.Rand {
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g.Rand
}

func (g *Generator) progress() Progress {
	if g.Progress == nil {
		return noopProgress{}
	}
	return g.Progress
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}
