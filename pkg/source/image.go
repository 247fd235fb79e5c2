// Package source describes the images glitchpaper rotates through.
//
// An [Image] is identified by the SHA-256 of its raw bytes, not by its
// path, so renaming a file keeps its identity and two files with
// identical content share one identity.
package source

import (
	"path/filepath"
	"strings"
)

// Image is a discovered, directly displayable image file.
type Image struct {
	Path string // file to display and glitch (the converted copy for foreign formats)
	Hash string // content hash of the original file's bytes
	Name string // display name, the original base name without extension
}

// Open hashes the file at path and returns its Image.
func Open(path string) (Image, error) {
	hash, err := HashFile(path)
	if err != nil {
		return Image{}, err
	}
	return Image{Path: path, Hash: hash, Name: DisplayName(path)}, nil
}

// DisplayName returns the base name of path without its extension.
func DisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
