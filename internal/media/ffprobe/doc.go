// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio stream properties
//   - Format: container-level duration and tags
//
// Inspect executes ffprobe and returns the parsed Result. Helper methods on
// Result give duration parsing and case-insensitive tag lookup; the metadata
// extractor uses them for durations and as a tag fallback for containers the
// native tag reader cannot open.
package ffprobe
