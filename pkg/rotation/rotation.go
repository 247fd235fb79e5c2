// Package rotation sequences wallpaper transitions.
//
// A [Rotation] owns the ordered wallpaper list and a position counter.
// [Rotation.TransitionFrames] turns the current position into the frame
// sequence of one transition, [Rotation.Transitions] does the same for
// several display targets at once, and [Rotation.Advance] moves to the
// next step.
//
// A transition from wallpaper A (outgoing) to wallpaper B (incoming),
// with both frame lists shuffled, plays:
//
//	A[0] .. A[n-2], B[0], A[n-1], B[1] .. B[n-1], base(B)
//
// The last outgoing frame is held back and slipped in after the first
// incoming frame so the two images blend, and the sequence always ends on
// the clean incoming image.
package rotation

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/glitchpaper/pkg/source"
)

// Wallpaper pairs a source image with its cached glitch frames.
type Wallpaper struct {
	Image  source.Image
	Frames []string // generation order
}

// Base returns the path of the clean image.
func (w Wallpaper) Base() string {
	return w.Image.Path
}

// Rotation is the wrapping sequence of wallpapers and the position in it.
// It is not safe for concurrent use.
type Rotation struct {
	wallpapers []Wallpaper
	position   uint64
	shuffle    bool
	reshuffles int
	rng        *rand.Rand
}

// Options configures New.
type Options struct {
	// Shuffle randomizes the initial order and reshuffles every time the
	// rotation wraps around.
	Shuffle bool

	// Rand drives all shuffling. Nil uses a randomly seeded source.
	Rand *rand.Rand
}

// New creates a rotation over wallpapers. The slice is copied.
// New panics if wallpapers is empty.
func New(wallpapers []Wallpaper, opts Options) *Rotation {
	if len(wallpapers) == 0 {
		panic("rotation: no wallpapers")
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r := &Rotation{
		wallpapers: slices.Clone(wallpapers),
		shuffle:    opts.Shuffle,
		rng:        rng,
	}
	if r.shuffle {
		r.rng.Shuffle(len(r.wallpapers), func(i, j int) {
			r.wallpapers[i], r.wallpapers[j] = r.wallpapers[j], r.wallpapers[i]
		})
	}
	return r
}

// Len returns the number of wallpapers.
func (r *Rotation) Len() int { return len(r.wallpapers) }

// Position returns the step counter. It only ever grows.
func (r *Rotation) Position() uint64 { return r.position }

// Reshuffles returns how many wrap-around reshuffles have happened.
func (r *Rotation) Reshuffles() int { return r.reshuffles }

// Wallpapers returns a copy of the current order.
func (r *Rotation) Wallpapers() []Wallpaper { return slices.Clone(r.wallpapers) }

// Advance moves to the next step.
func (r *Rotation) Advance() { r.position++ }

// index maps the position plus offset onto the wallpaper list.
func (r *Rotation) index(offset int) int {
	n := uint64(len(r.wallpapers))
	return int((r.position%n + uint64(offset)%n) % n)
}

// Current returns the wallpaper shown at offset once the last transition finished.
func (r *Rotation) Current(offset int) Wallpaper {
	return r.wallpapers[r.index(offset)]
}

// TransitionFrames returns the frame sequence that takes the target at
// offset from its current wallpaper to the next one. The result has
// 2*frames+1 entries and ends with the incoming wallpaper's clean image.
//
// offset does not change the position. When the incoming index wraps to
// zero and shuffling is on, the wallpaper list is reshuffled before the
// incoming wallpaper is read. Steps that drive several targets must use
// [Rotation.Transitions] so the list is reshuffled once per step.
//
// Frame lists are shuffled into fresh slices; the Wallpaper values held by
// the rotation keep their generation order.
func (r *Rotation) TransitionFrames(offset int) []string {
	oldIndex := r.index(offset)
	outgoing := r.wallpapers[oldIndex]
	out := r.shuffled(outgoing.Frames)

	newIndex := (oldIndex + 1) % len(r.wallpapers)
	if newIndex == 0 {
		r.reshuffle()
	}
	incoming := r.wallpapers[newIndex]
	return interleave(out, r.shuffled(incoming.Frames), incoming.Base())
}

// Transition is one display target's share of a step.
type Transition struct {
	Outgoing Wallpaper
	Incoming Wallpaper
	Frames   []string
}

// Transitions sequences one step for targets display targets. Target i
// moves from Current(i) to the wallpaper after it.
//
// Every outgoing wallpaper is taken before the list may change. If the
// step wraps the rotation and shuffling is on, the list is reshuffled
// exactly once and every incoming wallpaper is read from the new order,
// so after Advance target i shows Current(i).
func (r *Rotation) Transitions(targets int) []Transition {
	ts := make([]Transition, targets)
	outs := make([][]string, targets)
	for i := range ts {
		ts[i].Outgoing = r.Current(i)
		outs[i] = r.shuffled(ts[i].Outgoing.Frames)
	}

	if (r.index(0)+1)%len(r.wallpapers) == 0 {
		r.reshuffle()
	}

	for i := range ts {
		ts[i].Incoming = r.Current(i + 1)
		in := r.shuffled(ts[i].Incoming.Frames)
		ts[i].Frames = interleave(outs[i], in, ts[i].Incoming.Base())
	}
	return ts
}

// interleave lays out out[:n-1], in[0], out[n-1], in[1:], base.
func interleave(out, in []string, base string) []string {
	seq := make([]string, 0, len(out)+len(in)+1)
	var held []string
	if n := len(out); n > 0 {
		seq = append(seq, out[:n-1]...)
		held = out[n-1:]
	}
	if len(in) > 0 {
		seq = append(seq, in[0])
	}
	seq = append(seq, held...)
	if len(in) > 1 {
		seq = append(seq, in[1:]...)
	}
	return append(seq, base)
}

func (r *Rotation) reshuffle() {
	if !r.shuffle {
		return
	}
	r.rng.Shuffle(len(r.wallpapers), func(i, j int) {
		r.wallpapers[i], r.wallpapers[j] = r.wallpapers[j], r.wallpapers[i]
	})
	r.reshuffles++
}

func (r *Rotation) shuffled(frames []string) []string {
	out := slices.Clone(frames)
	r.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
