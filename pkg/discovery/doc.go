// Package discovery finds the source images glitchpaper rotates through.
//
// A [Scanner] walks a directory tree and yields one [source.Image] per
// usable file. JPEG files are yielded as they are. Files in other known
// image formats are first converted to JPEG by a [Converter]; when the
// conversion fails the file is skipped with a warning. Everything else
// is ignored silently.
//
// # Formats
//
//   - Supported: .jpg, .jpeg
//   - Converted natively: .png, .gif, .bmp, .tif, .tiff, .webp
//   - Converted with ImageMagick: .heic, .heif, .avif, .jxl
//
// Converted copies are named after the original's content hash, so a
// second scan reuses them.
package discovery
