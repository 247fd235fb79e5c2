package discovery

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/matzehuels/glitchpaper/pkg/command"
)

// ErrUnsupported is returned when a converter cannot handle the input format.
var ErrUnsupported = errors.New("unsupported format")

// Converter turns an image in a foreign format into a JPEG at dst.
type Converter interface {
	Convert(ctx context.Context, src, dst string) error
}

// Native converts formats with a registered Go decoder.
type Native struct {
	Quality int
}

// Convert decodes src and writes it to dst as JPEG.
func (n Native) Convert(ctx context.Context, src, dst string) error {
	if !nativeExts[strings.ToLower(filepath.Ext(src))] {
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(src))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	quality := n.Quality
	if quality <= 0 {
		quality = 95
	}
	return writeAtomic(dst, func(tmp *os.File) error {
		return jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality})
	})
}

// External converts through ImageMagick, trying each program in turn.
type External struct {
	// Programs to try, first match wins. Defaults to magick, then convert.
	Programs []string
	Run      command.Runner
}

// Convert runs "<program> src dst" for the first program that works.
func (e External) Convert(ctx context.Context, src, dst string) error {
	if !externalExts[strings.ToLower(filepath.Ext(src))] {
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(src))
	}

	programs := e.Programs
	if len(programs) == 0 {
		programs = []string{"magick", "convert"}
	}
	run := e.Run
	if run == nil {
		run = command.Exec
	}

	tmp := dst + ".tmp.jpg"
	var errs []error
	for _, prog := range programs {
		err := run(ctx, prog, src, tmp)
		if err == nil {
			return os.Rename(tmp, dst)
		}
		os.Remove(tmp)
		if !command.IsUnavailable(err) {
			return err
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("no converter for %s: %w", filepath.Base(src), errors.Join(errs...))
}

// Chain tries each converter in order and stops at the first success.
// Converters returning ErrUnsupported are skipped.
type Chain []Converter

// DefaultConverter converts natively where possible and falls back to ImageMagick.
func DefaultConverter() Chain {
	return Chain{Native{}, External{}}
}

// Convert implements Converter.
func (c Chain) Convert(ctx context.Context, src, dst string) error {
	var errs []error
	for _, conv := range c {
		err := conv.Convert(ctx, src, dst)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(src))
	}
	return errors.Join(errs...)
}

// writeAtomic writes dst through a temporary file in the same directory.
func writeAtomic(dst string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*.tmp")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
