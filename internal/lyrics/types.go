package lyrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedResponse marks provider payloads that could not be decoded.
// Retrying does not help.
var ErrMalformedResponse = errors.New("malformed provider response")

// LyricsQuery is the lookup key derived from an audio track. Empty strings
// mean the field is absent; a zero Duration means unknown.
type LyricsQuery struct {
	Artist   string
	Title    string
	Album    string
	Duration time.Duration
}

// Line is one timestamped lyric line.
type Line struct {
	Time time.Duration
	Text string
}

// LyricsCandidate is a ranked provider record with parsed lines.
type LyricsCandidate struct {
	ID         int64
	Artist     string
	Title      string
	Album      string
	Duration   time.Duration
	Lines      []Line
	Confidence float64
	// Exact is set when folded artist and title equal the query's.
	Exact bool
	// Weak is set when the track duration is known and the candidate's
	// duration is missing or outside the tolerance window.
	Weak bool
	// DurationDelta is the absolute duration difference, or -1 when unknown.
	DurationDelta time.Duration
}

// SearchRequest is one provider search. Free-text requests set Query and
// leave the structured fields empty.
type SearchRequest struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Query    string
}

// IsFreeText reports whether the request is a free-text search.
func (r SearchRequest) IsFreeText() bool {
	return strings.TrimSpace(r.Query) != ""
}

func (r SearchRequest) signature() string {
	return fmt.Sprintf("t:%s|a:%s|al:%s|d:%d|q:%s",
		strings.ToLower(strings.TrimSpace(r.Title)),
		strings.ToLower(strings.TrimSpace(r.Artist)),
		strings.ToLower(strings.TrimSpace(r.Album)),
		int64(r.Duration/time.Second),
		strings.ToLower(strings.TrimSpace(r.Query)))
}

// Record is a provider search result.
type Record struct {
	ID           int64
	TrackName    string
	ArtistName   string
	AlbumName    string
	Duration     time.Duration
	Instrumental bool
	PlainLyrics  string
	SyncedLyrics string
}

// Provider is the remote lyrics service.
type Provider interface {
	Search(ctx context.Context, req SearchRequest) ([]Record, error)
}

// StatusError is returned by providers for HTTP error responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned %s", e.Status)
	}
	return fmt.Sprintf("provider returned %s: %s", e.Status, e.Body)
}
