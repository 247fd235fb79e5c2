package glitch

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"math/rand/v2"
	"os"
)

// Parameter bounds, inclusive.
const (
	MaxAmount     = 99
	MaxSeed       = 99
	MaxIterations = 115
)

// DefaultQuality is the JPEG quality used when re-encoding frames.
const DefaultQuality = 90

var (
	// ErrInvalidParams is returned for parameters outside their bounds
	// or combinations the algorithm cannot apply.
	ErrInvalidParams = errors.New("invalid glitch parameters")

	// ErrCorrupt is returned when the source is not a usable JPEG stream
	// or the corrupted stream no longer decodes.
	ErrCorrupt = errors.New("corrupt image stream")
)

// IsTransformError reports whether err is a transform failure that a
// retry with different parameters may get past.
func IsTransformError(err error) bool {
	return errors.Is(err, ErrInvalidParams) || errors.Is(err, ErrCorrupt)
}

// Params controls a single glitch rendering.
type Params struct {
	Amount     int
	Seed       int
	Iterations int
}

// RandomParams draws each parameter independently and uniformly from its range.
func RandomParams(rng *rand.Rand) Params {
	return Params{
		Amount:     rng.IntN(MaxAmount + 1),
		Seed:       rng.IntN(MaxSeed + 1),
		Iterations: rng.IntN(MaxIterations + 1),
	}
}

// String formats the parameters for logging.
func (p Params) String() string {
	return fmt.Sprintf("amount=%d seed=%d iterations=%d", p.Amount, p.Seed, p.Iterations)
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	switch {
	case p.Amount < 0 || p.Amount > MaxAmount:
		return fmt.Errorf("%w: amount %d out of range", ErrInvalidParams, p.Amount)
	case p.Seed < 0 || p.Seed > MaxSeed:
		return fmt.Errorf("%w: seed %d out of range", ErrInvalidParams, p.Seed)
	case p.Iterations < 1 || p.Iterations > MaxIterations:
		return fmt.Errorf("%w: iterations %d out of range", ErrInvalidParams, p.Iterations)
	}
	return nil
}

// Transformer renders one glitch frame from raw source bytes into dst.
type Transformer interface {
	Transform(src []byte, p Params, dst string) error
}

// JPEG is the byte-corruption transformer for JPEG sources.
type JPEG struct {
	// Quality of the re-encoded frame. Zero means DefaultQuality.
	Quality int
}

// Transform corrupts src, verifies the result decodes and writes it to dst.
// Nothing is written when the corrupted stream fails to decode.
func (j JPEG) Transform(src []byte, p Params, dst string) error {
	data, err := Corrupt(src, p)
	if err != nil {
		return err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: decode: %v", ErrCorrupt, err)
	}

	quality := j.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	return f.Close()
}

// Corrupt returns a copy of the JPEG stream src with the glitch applied.
// The same src and params always yield the same output.
func Corrupt(src []byte, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	header, err := headerLength(src)
	if err != nil {
		return nil, err
	}
	// The last bytes hold the end-of-image marker and are left alone.
	maxIndex := len(src) - header - 4
	if maxIndex <= 0 {
		return nil, fmt.Errorf("%w: no scan data", ErrCorrupt)
	}

	out := bytes.Clone(src)
	value := byte(p.Amount * 256 / 100)
	for i := range p.Iterations {
		lo := maxIndex * i / p.Iterations
		hi := maxIndex * (i + 1) / p.Iterations
		at := min(lo+(hi-lo)*p.Seed/100, maxIndex)
		out[header+at] = value
	}
	return out, nil
}

// headerLength returns the offset just past the first start-of-scan marker.
func headerLength(data []byte) (int, error) {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == 0xDA {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("%w: no start-of-scan marker", ErrCorrupt)
}
