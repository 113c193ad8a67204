package metadata

import (
	"path/filepath"
	"strings"
	"time"
)

// Tag sources recorded on AudioTrack.TitleSource.
const (
	SourceTags     = "tags"
	SourceProbe    = "ffprobe"
	SourceFilename = "filename"
)

// AudioTrack is the metadata extracted from one audio file. Empty strings mean
// the field is absent; a zero Duration means unknown.
type AudioTrack struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	Duration    time.Duration
	Format      string
	TrackNumber int
	TitleSource string
}

// HasDuration reports whether the duration is known.
func (t AudioTrack) HasDuration() bool {
	return t.Duration > 0
}

// FormatFromPath returns the lowercase extension without its dot.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
