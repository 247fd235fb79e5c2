package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/cache"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
	"github.com/matzehuels/glitchpaper/pkg/glitch"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// fakeTransformer writes a stub frame and can fail a set number of times.
type fakeTransformer struct {
	calls    int
	failures int // fail this many calls before succeeding; negative fails forever
	failFor  string
}

func (f *fakeTransformer) Transform(src []byte, p glitch.Params, dst string) error {
	f.calls++
	if f.failFor != "" && string(src) != f.failFor {
		return os.WriteFile(dst, src, 0644)
	}
	if f.failures < 0 || f.calls <= f.failures {
		return fmt.Errorf("%w: undecodable", glitch.ErrCorrupt)
	}
	return os.WriteFile(dst, src, 0644)
}

type recordingProgress struct {
	frames int
	images []string
}

func (r *recordingProgress) OnFrame(source.Image, int, int, bool) { r.frames++ }
func (r *recordingProgress) OnImage(img source.Image, _, _ int) {
	r.images = append(r.images, img.Name)
}

func testImages(t *testing.T, contents ...string) []source.Image {
	t.Helper()
	dir := t.TempDir()
	var imgs []source.Image
	for i, c := range contents {
		path := filepath.Join(dir, fmt.Sprintf("img%d.jpg", i))
		if err := os.WriteFile(path, []byte(c), 0644); err != nil {
			t.Fatal(err)
		}
		img, err := source.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		imgs = append(imgs, img)
	}
	return imgs
}

func newGenerator(t *testing.T, dir string, tr glitch.Transformer, frames int) *Generator {
	t.Helper()
	c, err := cache.NewFrameCache(dir, tr)
	if err != nil {
		t.Fatal(err)
	}
	return &Generator{
		Cache:   c,
		Frames:  frames,
		Backoff: cache.Backoff{Attempts: 5, Initial: time.Microsecond, Max: time.Microsecond},
		Rand:    rand.New(rand.NewPCG(7, 7)),
		Logger:  log.New(io.Discard),
	}
}

func TestGenerateColdThenWarm(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	imgs := testImages(t, "first", "second")

	tr := &fakeTransformer{}
	g := newGenerator(t, dir, tr, 2)
	ws, stats, err := g.Generate(ctx, slices.Values(imgs))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(ws) != 2 || stats.Rendered != 4 || tr.calls != 4 {
		t.Fatalf("cold run: %d wallpapers, stats %+v, %d transforms", len(ws), stats, tr.calls)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 4 {
		t.Errorf("cache holds %d files, want 4", len(entries))
	}

	warm := &fakeTransformer{}
	g = newGenerator(t, dir, warm, 2)
	ws, stats, err = g.Generate(ctx, slices.Values(imgs))
	if err != nil {
		t.Fatalf("Generate (warm): %v", err)
	}
	if warm.calls != 0 || stats.Cached != 4 || stats.Rendered != 0 {
		t.Errorf("warm run: stats %+v, %d transforms", stats, warm.calls)
	}
	if len(ws) != 2 {
		t.Errorf("warm run: %d wallpapers, want 2", len(ws))
	}
}

func TestWallpaperFrameOrder(t *testing.T) {
	imgs := testImages(t, "only")
	g := newGenerator(t, t.TempDir(), &fakeTransformer{}, 3)

	w, _, err := g.Wallpaper(context.Background(), imgs[0])
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range w.Frames {
		if want := g.Cache.Path(imgs[0].Hash, i); f != want {
			t.Errorf("frame %d = %q, want %q", i, f, want)
		}
	}
	if w.Base() != imgs[0].Path {
		t.Errorf("Base() = %q, want %q", w.Base(), imgs[0].Path)
	}
}

func TestWallpaperRetriesTransformFailures(t *testing.T) {
	imgs := testImages(t, "flaky")
	tr := &fakeTransformer{failures: 3}
	g := newGenerator(t, t.TempDir(), tr, 1)

	_, stats, err := g.Wallpaper(context.Background(), imgs[0])
	if err != nil {
		t.Fatalf("Wallpaper: %v", err)
	}
	if stats.Attempts != 4 || stats.Rendered != 1 {
		t.Errorf("stats = %+v, want 4 attempts and 1 render", stats)
	}
}

func TestGenerateDropsExhaustedImage(t *testing.T) {
	imgs := testImages(t, "good", "bad", "also good")
	tr := &fakeTransformer{failures: -1, failFor: "bad"}
	progress := &recordingProgress{}
	g := newGenerator(t, t.TempDir(), tr, 2)
	g.Progress = progress

	ws, stats, err := g.Generate(context.Background(), slices.Values(imgs))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(ws) != 2 || stats.Dropped != 1 || stats.Images != 2 {
		t.Errorf("got %d wallpapers, stats %+v", len(ws), stats)
	}
	if want := []string{"img0", "img2"}; !slices.Equal(progress.images, want) {
		t.Errorf("progress images = %v, want %v", progress.images, want)
	}
}

func TestWallpaperExhaustedIsTransformFailure(t *testing.T) {
	imgs := testImages(t, "bad")
	g := newGenerator(t, t.TempDir(), &fakeTransformer{failures: -1}, 2)

	_, stats, err := g.Wallpaper(context.Background(), imgs[0])
	if got := gperrors.GetCode(err); got != gperrors.ErrCodeTransformFailed {
		t.Fatalf("code = %q, want %q (err %v)", got, gperrors.ErrCodeTransformFailed, err)
	}
	if !errors.Is(err, cache.ErrExhausted) {
		t.Errorf("err = %v, want it to wrap cache.ErrExhausted", err)
	}
	if gperrors.IsUsage(err) {
		t.Error("a transform failure must not be a usage error")
	}
	if stats.Attempts != 5 {
		t.Errorf("attempts = %d, want the full budget of 5", stats.Attempts)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	imgs := testImages(t, "a")
	g := newGenerator(t, t.TempDir(), &fakeTransformer{}, 2)

	_, _, err := g.Generate(ctx, slices.Values(imgs))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
