package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/glitchpaper/pkg/command"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
)

// ErrUnavailable marks a recoverable backend failure: the program is not
// installed or it exited with a non-zero status.
var ErrUnavailable = errors.New("backend unavailable")

// Backend sets the displayed wallpaper.
type Backend interface {
	// Name identifies the backend in configuration and logs.
	Name() string

	// Display shows frame on target. An empty target means every output.
	// Recoverable failures wrap ErrUnavailable.
	Display(ctx context.Context, frame, target string) error
}

// Placement controls how an image is fit to the screen.
type Placement string

const (
	PlacementFill    Placement = "fill"    // cover the screen, cropping
	PlacementFit     Placement = "fit"     // fit inside, letterboxing
	PlacementCenter  Placement = "center"  // original size, centered
	PlacementTile    Placement = "tile"    // repeat
	PlacementStretch Placement = "stretch" // distort to the screen size
	PlacementSpan    Placement = "span"    // one image across all outputs
)

// Placements lists the valid placements.
var Placements = []Placement{PlacementFill, PlacementFit, PlacementCenter, PlacementTile, PlacementStretch, PlacementSpan}

// placementAliases accepts GNOME's picture-options names. GNOME's "none"
// hides the picture, which makes no sense here; it shows the image
// unscaled instead.
var placementAliases = map[string]Placement{
	"zoom":      PlacementFill,
	"scaled":    PlacementFit,
	"centered":  PlacementCenter,
	"none":      PlacementCenter,
	"wallpaper": PlacementTile,
	"stretched": PlacementStretch,
	"spanned":   PlacementSpan,
}

// ParsePlacement validates a placement name. GNOME names are accepted
// as aliases.
func ParsePlacement(s string) (Placement, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return PlacementFill, nil
	}
	if p, ok := placementAliases[name]; ok {
		return p, nil
	}
	for _, valid := range Placements {
		if Placement(name) == valid {
			return valid, nil
		}
	}
	return "", gperrors.New(gperrors.ErrCodeInvalidPlacement, "unknown placement %q (valid: fill, fit, center, tile, stretch, span)", s)
}

// DefaultOrder is the fallback order used when none is configured.
var DefaultOrder = []string{"swww", "swaymsg", "feh", "gsettings"}

// New returns the backend with the given name.
func New(name string, placement Placement, run command.Runner) (Backend, error) {
	if run == nil {
		run = command.Exec
	}
	switch strings.ToLower(name) {
	case "swww":
		return &Swww{Placement: placement, Run: run}, nil
	case "swaymsg", "sway":
		return &Sway{Placement: placement, Run: run}, nil
	case "feh":
		return &Feh{Placement: placement, Run: run}, nil
	case "gsettings", "gnome":
		return &GSettings{Placement: placement, Run: run}, nil
	}
	return nil, gperrors.New(gperrors.ErrCodeInvalidBackend, "unknown backend %q (valid: %s)", name, strings.Join(DefaultOrder, ", "))
}

// NewChain builds backends in the given order. An empty list means DefaultOrder.
func NewChain(names []string, placement Placement, run command.Runner) ([]Backend, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	seen := make(map[string]bool, len(names))
	chain := make([]Backend, 0, len(names))
	for _, name := range names {
		b, err := New(name, placement, run)
		if err != nil {
			return nil, err
		}
		if seen[b.Name()] {
			return nil, gperrors.New(gperrors.ErrCodeInvalidBackend, "backend %q listed twice", b.Name())
		}
		seen[b.Name()] = true
		chain = append(chain, b)
	}
	return chain, nil
}

// runBackend executes a backend command and classifies its failure.
func runBackend(ctx context.Context, run command.Runner, name string, args ...string) error {
	err := run(ctx, name, args...)
	if err == nil {
		return nil
	}
	if command.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
