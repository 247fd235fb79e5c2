package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/glitchpaper/pkg/glitch"
	"github.com/matzehuels/glitchpaper/pkg/observability"
	"github.com/matzehuels/glitchpaper/pkg/source"
)

// FrameExt is the file extension of rendered frames.
const FrameExt = ".jpg"

// frameSep separates the content hash from the frame index in file names.
const frameSep = "___"

// convertedDir holds JPEG copies of sources in foreign formats.
const convertedDir = "converted"

// FrameCache is a content-addressed, on-disk store of glitch frames.
//
// A frame lives at {dir}/{hash}___{index}.jpg. The path is a pure function
// of (hash, index), so a file's presence is the only validity check and
// no manifest is kept. Frames are written to a temporary file and renamed
// into place; a reader never sees a partial frame.
type FrameCache struct {
	dir         string
	transformer glitch.Transformer
}

// NewFrameCache creates a frame cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFrameCache(dir string, t glitch.Transformer) (*FrameCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if t == nil {
		t = glitch.JPEG{}
	}
	return &FrameCache{dir: dir, transformer: t}, nil
}

// Dir returns the cache root.
func (c *FrameCache) Dir() string {
	return c.dir
}

// ConvertedDir returns the directory for converted source images.
func (c *FrameCache) ConvertedDir() string {
	return filepath.Join(c.dir, convertedDir)
}

// Path returns the deterministic location of frame index of the image
// with the given content hash.
func (c *FrameCache) Path(hash string, index int) string {
	return filepath.Join(c.dir, FrameName(hash, index))
}

// FrameName returns the file name of a frame: {hash}___{index}.jpg.
func FrameName(hash string, index int) string {
	return fmt.Sprintf("%s%s%d%s", hash, frameSep, index, FrameExt)
}

// Has reports whether the frame is already rendered.
func (c *FrameCache) Has(hash string, index int) bool {
	info, err := os.Stat(c.Path(hash, index))
	return err == nil && info.Mode().IsRegular()
}

// EnsureFrame returns the path of frame index for img, rendering it with
// params first if it is not cached yet. The returned bool reports a cache hit.
//
// Transform failures come back wrapped with ErrTransform and marked
// Retryable; the caller retries with fresh params.
func (c *FrameCache) EnsureFrame(ctx context.Context, img source.Image, index int, params glitch.Params) (string, bool, error) {
	path := c.Path(img.Hash, index)
	if c.Has(img.Hash, index) {
		observability.Cache().OnCacheHit(ctx, "frame")
		return path, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "frame")

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	src, err := os.ReadFile(img.Path)
	if err != nil {
		return "", false, fmt.Errorf("read source %s: %w", img.Path, err)
	}

	tmp, err := os.CreateTemp(c.dir, "."+FrameName(img.Hash, index)+"-*.tmp")
	if err != nil {
		return "", false, err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := c.transformer.Transform(src, params, tmpPath); err != nil {
		os.Remove(tmpPath)
		if glitch.IsTransformError(err) {
			return "", false, Retryable(fmt.Errorf("%w: %s frame %d (%s): %w", ErrTransform, img.Name, index, params, err))
		}
		return "", false, fmt.Errorf("render %s frame %d: %w", img.Name, index, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", false, err
	}

	if info, err := os.Stat(path); err == nil {
		observability.Cache().OnCacheSet(ctx, "frame", info.Size())
	}
	return path, false, nil
}

// Frames returns the paths of frames 0..n-1 for hash that exist on disk.
func (c *FrameCache) Frames(hash string, n int) []string {
	var paths []string
	for i := range n {
		if c.Has(hash, i) {
			paths = append(paths, c.Path(hash, i))
		}
	}
	return paths
}

// Images returns the number of frames cached per content hash.
func (c *FrameCache) Images() (map[string]int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if hash, _, ok := ParseFrameName(e.Name()); ok {
			counts[hash]++
		}
	}
	return counts, nil
}

// Usage reports the number of files and total bytes under the cache root.
func (c *FrameCache) Usage() (files int, size int64, err error) {
	err = filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

// Clear removes every cached frame and converted image.
// It returns the number of files removed.
func Clear(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	// Clean up empty subdirectories, deepest first
	for i := len(dirs) - 1; i >= 0; i-- {
		os.Remove(dirs[i])
	}
	return count, nil
}

// ParseFrameName splits a frame file name into hash and index.
// ok is false for names that are not frames.
func ParseFrameName(name string) (hash string, index int, ok bool) {
	stem, found := strings.CutSuffix(name, FrameExt)
	if !found || strings.HasPrefix(name, ".") {
		return "", 0, false
	}
	hash, idx, found := strings.Cut(stem, frameSep)
	if !found || hash == "" {
		return "", 0, false
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 0 || strconv.Itoa(index) != idx {
		return "", 0, false
	}
	return hash, index, true
}
