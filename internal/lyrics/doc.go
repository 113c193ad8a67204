// Package lyrics finds time-synced lyrics for an audio track.
//
// A Client turns a LyricsQuery into ranked LyricsCandidates. It drives a
// Provider (the shipped one lives in the lrclib subpackage) through a series
// of search variants, applies a bounded retry policy with exponential backoff
// to transient failures, spaces requests by an optional minimum interval
// shared across goroutines, and ranks the surviving records by exact metadata
// match, duration agreement, and provider order.
//
// An empty result with a nil error means the provider has no lyrics for the
// track. Failures that outlive the retry policy, and provider rejections that
// retrying cannot fix, are classified as services.ErrProviderUnavailable.
//
// The package also owns the LRC line format: ParseLRC and FormatLRC.
package lyrics
