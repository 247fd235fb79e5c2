package discovery

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/cache"
	gperrors "github.com/matzehuels/glitchpaper/pkg/errors"
	"github.com/matzehuels/glitchpaper/pkg/observability"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// Scanner enumerates usable images under a directory tree.
type Scanner struct {
	// Converter handles foreign formats. Nil uses DefaultConverter.
	Converter Converter

	// OutDir receives converted copies, named {hash}.jpg.
	OutDir string

	// Exclude lists directories that are never descended into,
	// typically the cache when it lives inside the image directory. When
	// the walk root itself is excluded, its files are still scanned but
	// cached frames in it are skipped.
	Exclude []string

	Logger *log.Logger
}

// Images walks root and yields each usable image. The walk is lazy and
// restarts on every call; its order follows the filesystem. Conversion
// failures and unreadable files are logged and skipped. Stopping the
// range loop or cancelling ctx ends the walk.
func (s *Scanner) Images(ctx context.Context, root string) iter.Seq[source.Image] {
	return func(yield func(source.Image) bool) {
		logger := s.logger()
		excluded := s.excluded()

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("cannot read", "path", path, "err", err)
				return nil // Skip errors, continue walking
			}
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if d.IsDir() {
				if path != root && excluded[absPath(path)] {
					return filepath.SkipDir
				}
				return nil
			}
			if isHidden(path) {
				return nil
			}
			if excluded[absPath(filepath.Dir(path))] && isFrame(path) {
				return nil
			}

			img, ok := s.resolve(ctx, path)
			if !ok {
				return nil
			}
			if !yield(img) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect runs Images to completion and returns the result as a slice.
func (s *Scanner) Collect(ctx context.Context, root string) []source.Image {
	var images []source.Image
	for img := range s.Images(ctx, root) {
		images = append(images, img)
	}
	return images
}

// resolve turns a file into a displayable image, converting if needed.
func (s *Scanner) resolve(ctx context.Context, path string) (source.Image, bool) {
	logger := s.logger()

	switch Classify(path) {
	case KindSupported:
		img, err := source.Open(path)
		if err != nil {
			logger.Warn("skipping unreadable image", "path", path, "err", err)
			return source.Image{}, false
		}
		return img, true

	case KindConvertible:
		hash, err := source.HashFile(path)
		if err != nil {
			logger.Warn("skipping unreadable image", "path", path, "err", err)
			return source.Image{}, false
		}
		dst, err := s.convert(ctx, path, hash)
		if err != nil {
			logger.Warn("skipping image that could not be converted", "path", path, "err", err)
			return source.Image{}, false
		}
		return source.Image{Path: dst, Hash: hash, Name: source.DisplayName(path)}, true
	}
	return source.Image{}, false
}

// convert produces {OutDir}/{hash}.jpg unless it already exists.
func (s *Scanner) convert(ctx context.Context, path, hash string) (string, error) {
	dst := filepath.Join(s.OutDir, hash+".jpg")
	if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
		observability.Cache().OnCacheHit(ctx, "converted")
		return dst, nil
	}
	observability.Cache().OnCacheMiss(ctx, "converted")

	if err := os.MkdirAll(s.OutDir, 0755); err != nil {
		return "", err
	}
	conv := s.Converter
	if conv == nil {
		conv = DefaultConverter()
	}
	if err := conv.Convert(ctx, path, dst); err != nil {
		return "", gperrors.Wrap(gperrors.ErrCodeConvertFailed, err, "convert %s", filepath.Base(path))
	}

	if info, err := os.Stat(dst); err == nil {
		observability.Cache().OnCacheSet(ctx, "converted", info.Size())
	}
	s.logger().Debug("converted image", "from", path, "to", dst)
	return dst, nil
}

func (s *Scanner) excluded() map[string]bool {
	m := make(map[string]bool, len(s.Exclude)+1)
	for _, dir := range s.Exclude {
		if dir != "" {
			m[absPath(dir)] = true
		}
	}
	if s.OutDir != "" {
		m[absPath(s.OutDir)] = true
	}
	return m
}

func (s *Scanner) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// isHidden reports whether the base name of path starts with a dot.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isFrame(path string) bool {
	_, _, ok := cache.ParseFrameName(filepath.Base(path))
	return ok
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
