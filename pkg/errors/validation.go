package errors

import (
	"os"
	"time"
)

// ValidateDirectory checks that dir names an existing, readable directory.
func ValidateDirectory(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidDirectory, "image directory cannot be empty")
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return New(ErrCodeInvalidDirectory, "image directory %q does not exist", dir)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidDirectory, err, "cannot access image directory %q", dir)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidDirectory, "%q is not a directory", dir)
	}

	f, err := os.Open(dir)
	if err != nil {
		return Wrap(ErrCodeInvalidDirectory, err, "cannot read image directory %q", dir)
	}
	return f.Close()
}

// ValidateFrames checks the per-image frame count.
// At least one glitch frame is needed to build a transition.
func ValidateFrames(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidFrames, "frame count must be at least 1, got %d", n)
	}
	const maxFrames = 1000
	if n > maxFrames {
		return New(ErrCodeInvalidFrames, "frame count too large (max %d), got %d", maxFrames, n)
	}
	return nil
}

// ValidatePeriod checks the transition period.
func ValidatePeriod(d time.Duration) error {
	if d <= 0 {
		return New(ErrCodeInvalidDuration, "transition period must be positive, got %s", d)
	}
	return nil
}

// ValidateDelayRange checks the inter-frame delay bounds.
func ValidateDelayRange(lo, hi time.Duration) error {
	if lo < 0 || hi < 0 {
		return New(ErrCodeInvalidDuration, "frame delay cannot be negative (min %s, max %s)", lo, hi)
	}
	if lo > hi {
		return New(ErrCodeInvalidDuration, "minimum frame delay %s exceeds maximum %s", lo, hi)
	}
	return nil
}
