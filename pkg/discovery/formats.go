package discovery

import (
	"path/filepath"
	"strings"
)

// Kind classifies a file by extension.
type Kind int

const (
	// KindIgnored files are skipped silently.
	KindIgnored Kind = iota
	// KindSupported files are used directly.
	KindSupported
	// KindConvertible files are converted to JPEG first.
	KindConvertible
)

var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// nativeExts are decoded in-process.
var nativeExts = map[string]bool{
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// externalExts need an external converter.
var externalExts = map[string]bool{
	".heic": true,
	".heif": true,
	".avif": true,
	".jxl":  true,
}

// Classify returns the Kind of path based on its extension (case-insensitive).
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case supportedExts[ext]:
		return KindSupported
	case nativeExts[ext], externalExts[ext]:
		return KindConvertible
	default:
		return KindIgnored
	}
}
