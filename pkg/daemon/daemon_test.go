package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/backend"
	"github.com/matzehuels/glitchpaper/pkg/rotation"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// fakePlayer records what each target was asked to show.
type fakePlayer struct {
	mu        sync.Mutex
	played    map[string][][]string
	displayed map[string][]string
	fail      bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{played: map[string][][]string{}, displayed: map[string][]string{}}
}

func (p *fakePlayer) Play(ctx context.Context, frames []string, target string) (backend.PlayStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played[target] = append(p.played[target], frames)
	if p.fail {
		return backend.PlayStats{Skipped: len(frames)}, nil
	}
	return backend.PlayStats{Displayed: len(frames), Backend: "fake"}, ctx.Err()
}

func (p *fakePlayer) Display(_ context.Context, frame, target string, _ int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return -1, backend.ErrNoBackend
	}
	p.displayed[target] = append(p.displayed[target], frame)
	return 0, nil
}

func testRotation(count, frames int) *rotation.Rotation {
	return newTestRotation(count, frames, false)
}

func newTestRotation(count, frames int, shuffle bool) *rotation.Rotation {
	ws := make([]rotation.Wallpaper, count)
	for i := range count {
		name := fmt.Sprintf("w%d", i)
		ws[i] = rotation.Wallpaper{Image: source.Image{Path: name + ".jpg", Hash: name, Name: name}}
		for f := range frames {
			ws[i].Frames = append(ws[i].Frames, fmt.Sprintf("%s___%d.jpg", name, f))
		}
	}
	return rotation.New(ws, rotation.Options{Shuffle: shuffle, Rand: rand.New(rand.NewPCG(3, 3))})
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestStepAdvancesOnce(t *testing.T) {
	for _, fail := range []bool{false, true} {
		t.Run(fmt.Sprintf("fail=%v", fail), func(t *testing.T) {
			p := newFakePlayer()
			p.fail = fail
			d := &Driver{Rotation: testRotation(3, 2), Player: p, Logger: quiet()}

			for step := range 5 {
				if err := d.Step(context.Background()); err != nil {
					t.Fatalf("Step: %v", err)
				}
				if got := d.Rotation.Position(); got != uint64(step+1) {
					t.Fatalf("position = %d after %d steps", got, step+1)
				}
			}
		})
	}
}

func TestStepTargetsUseOffsets(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			p := newFakePlayer()
			r := testRotation(4, 1)
			d := &Driver{Rotation: r, Player: p, Targets: []string{"DP-1", "DP-2"}, Parallel: parallel, Logger: quiet()}

			if err := d.Step(context.Background()); err != nil {
				t.Fatal(err)
			}
			for i, target := range d.Targets {
				seqs := p.played[target]
				if len(seqs) != 1 {
					t.Fatalf("%s played %d transitions", target, len(seqs))
				}
				last := seqs[0][len(seqs[0])-1]
				if want := r.Current(i).Base(); last != want {
					t.Errorf("%s ended on %q, want %q", target, last, want)
				}
			}
			if r.Position() != 1 {
				t.Errorf("position = %d, want 1", r.Position())
			}
		})
	}
}

func TestStepShuffledTargetsStayContinuous(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			p := newFakePlayer()
			r := newTestRotation(3, 2, true)
			d := &Driver{Rotation: r, Player: p, Targets: []string{"DP-1", "DP-2"}, Parallel: parallel, Logger: quiet()}

			if err := d.Start(context.Background()); err != nil {
				t.Fatal(err)
			}
			const steps = 30
			for range steps {
				if err := d.Step(context.Background()); err != nil {
					t.Fatal(err)
				}
			}

			for _, target := range d.Targets {
				showing := strings.TrimSuffix(p.displayed[target][0], ".jpg")
				for step, seq := range p.played[target] {
					first, _, _ := strings.Cut(seq[0], "___")
					if first != showing {
						t.Errorf("%s step %d: showing %s, transition starts with frames of %s", target, step, showing, first)
					}
					showing = strings.TrimSuffix(seq[len(seq)-1], ".jpg")
				}
			}
			if got := r.Reshuffles(); got != steps/3 {
				t.Errorf("Reshuffles() = %d, want one per cycle (%d)", got, steps/3)
			}
		})
	}
}

func TestStartShowsCleanWallpapers(t *testing.T) {
	p := newFakePlayer()
	r := testRotation(3, 2)
	d := &Driver{Rotation: r, Player: p, Logger: quiet()}

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if want := []string{r.Current(0).Base()}; !slices.Equal(p.displayed[""], want) {
		t.Errorf("displayed = %v, want %v", p.displayed[""], want)
	}
	if r.Position() != 0 {
		t.Errorf("Start moved the rotation to %d", r.Position())
	}
}

func TestStartToleratesFailures(t *testing.T) {
	p := newFakePlayer()
	p.fail = true
	d := &Driver{Rotation: testRotation(2, 1), Player: p, Logger: quiet()}
	if err := d.Start(context.Background()); err != nil {
		t.Errorf("Start = %v, want nil", err)
	}
}

func TestRunWaitsBetweenTransitionStarts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Unix(0, 0)
	var waits []time.Duration
	p := newFakePlayer()
	d := &Driver{
		Rotation: testRotation(2, 1),
		Player:   &slowPlayer{fakePlayer: p, advance: func() { now = now.Add(2 * time.Second) }},
		Period:   10 * time.Second,
		Logger:   quiet(),
		Now:      func() time.Time { return now },
		Wait: func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			if len(waits) == 3 {
				cancel()
				return ctx.Err()
			}
			now = now.Add(d)
			return nil
		},
	}

	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	// The first period starts after the initial display; later waits
	// subtract the two seconds each transition took.
	want := []time.Duration{10 * time.Second, 8 * time.Second, 8 * time.Second}
	if !slices.Equal(waits, want) {
		t.Errorf("waits = %v, want %v", waits, want)
	}
	if got := d.Rotation.Position(); got != 2 {
		t.Errorf("position = %d, want 2", got)
	}
}

// slowPlayer advances a fake clock on every call.
type slowPlayer struct {
	*fakePlayer
	advance func()
}

func (s *slowPlayer) Play(ctx context.Context, frames []string, target string) (backend.PlayStats, error) {
	s.advance()
	return s.fakePlayer.Play(ctx, frames, target)
}

func (s *slowPlayer) Display(ctx context.Context, frame, target string, start int) (int, error) {
	s.advance()
	return s.fakePlayer.Display(ctx, frame, target, start)
}

func TestTargetNames(t *testing.T) {
	if got := targetName(""); got != "all" {
		t.Errorf("targetName(\"\") = %q", got)
	}
	if got := targetName("DP-1"); got != "DP-1" {
		t.Errorf("targetName(DP-1) = %q", got)
	}
}
