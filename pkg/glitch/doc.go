// Package glitch renders corrupted ("glitched") JPEG frames.
//
// The transform works on the encoded byte stream rather than on pixels:
// a handful of bytes inside the entropy-coded scan data are overwritten
// with a fixed value, then the stream is decoded and re-encoded. Most
// parameter combinations produce a visibly broken but decodable image.
// Some produce a stream the decoder rejects; those surface as
// [ErrCorrupt] and callers are expected to retry with fresh [Params].
//
// # Parameters
//
//   - Amount (0..99): the byte value written, scaled to 0..253
//   - Seed (0..99): where inside each segment the byte lands
//   - Iterations (0..115): how many segments the scan data is split into
//
// Iterations of zero is rejected with [ErrInvalidParams].
package glitch
