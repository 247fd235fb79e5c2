package backend

import (
	"context"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/matzehuels/glitchpaper/pkg/command"
)

// Swww drives the swww Wayland wallpaper daemon.
type Swww struct {
	Placement Placement
	Run       command.Runner
}

func (b *Swww) Name() string { return "swww" }

func (b *Swww) Display(ctx context.Context, frame, target string) error {
	args := []string{"img", "--transition-type", "none", "--resize", swwwResize(b.Placement)}
	if target != "" {
		args = append(args, "--outputs", target)
	}
	args = append(args, frame)
	return runBackend(ctx, b.Run, "swww", args...)
}

func swwwResize(p Placement) string {
	switch p {
	case PlacementFit:
		return "fit"
	case PlacementCenter, PlacementTile:
		return "no"
	case PlacementSpan:
		return "crop"
	case PlacementStretch:
		return "stretch"
	default:
		return "crop"
	}
}

// Sway sets the background through the sway IPC.
type Sway struct {
	Placement Placement
	Run       command.Runner
}

func (b *Sway) Name() string { return "swaymsg" }

func (b *Sway) Display(ctx context.Context, frame, target string) error {
	if target == "" {
		target = "*"
	}
	return runBackend(ctx, b.Run, "swaymsg", "output", target, "bg", frame, swayMode(b.Placement))
}

func swayMode(p Placement) string {
	switch p {
	case PlacementFit, PlacementCenter, PlacementTile, PlacementStretch:
		return string(p)
	default:
		return string(PlacementFill)
	}
}

// Feh sets the X11 root window background.
type Feh struct {
	Placement Placement
	Run       command.Runner
}

func (b *Feh) Name() string { return "feh" }

// Display ignores target; feh sets every X screen at once.
func (b *Feh) Display(ctx context.Context, frame, target string) error {
	args := append([]string{"--no-fehbg"}, fehMode(b.Placement)...)
	return runBackend(ctx, b.Run, "feh", append(args, frame)...)
}

func fehMode(p Placement) []string {
	switch p {
	case PlacementFit:
		return []string{"--bg-max"}
	case PlacementCenter:
		return []string{"--bg-center"}
	case PlacementTile:
		return []string{"--bg-tile"}
	case PlacementStretch:
		return []string{"--bg-scale"}
	case PlacementSpan:
		return []string{"--bg-fill", "--no-xinerama"}
	default:
		return []string{"--bg-fill"}
	}
}

// GSettings writes the GNOME background keys.
// Both the light and dark URIs are set so the frame shows in either style.
// picture-options is written only when it differs from the last value
// this backend applied.
type GSettings struct {
	Placement Placement
	Run       command.Runner

	mu      sync.Mutex
	applied string
}

func (b *GSettings) Name() string { return "gsettings" }

// Display ignores target; GNOME has a single background setting.
func (b *GSettings) Display(ctx context.Context, frame, target string) error {
	const schema = "org.gnome.desktop.background"
	uri := fileURI(frame)

	if err := b.applyOptions(ctx, schema); err != nil {
		return err
	}
	if err := runBackend(ctx, b.Run, "gsettings", "set", schema, "picture-uri", uri); err != nil {
		return err
	}
	// GNOME before 42 has no dark variant.
	_ = runBackend(ctx, b.Run, "gsettings", "set", schema, "picture-uri-dark", uri)
	return nil
}

func (b *GSettings) applyOptions(ctx context.Context, schema string) error {
	options := gnomeOptions(b.Placement)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.applied == options {
		return nil
	}
	if err := runBackend(ctx, b.Run, "gsettings", "set", schema, "picture-options", options); err != nil {
		return err
	}
	b.applied = options
	return nil
}

func gnomeOptions(p Placement) string {
	switch p {
	case PlacementSpan:
		return "spanned"
	case PlacementFit:
		return "scaled"
	case PlacementCenter:
		return "centered"
	case PlacementTile:
		return "wallpaper"
	case PlacementStretch:
		return "stretched"
	default:
		return "zoom"
	}
}

func fileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
