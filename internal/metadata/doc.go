// Package metadata turns an audio file into an AudioTrack: title, artist,
// album, and duration.
//
// Embedded tags are read with github.com/dhowden/tag (ID3, MP4, FLAC, Vorbis,
// DSF). WAV files are decoded with github.com/go-audio/wav. Durations and
// fallback tags come from a DurationProber, normally ffprobe. When no title is
// tagged, the file stem supplies one: leading track numbers are stripped and an
// "Artist - Title" stem is split into its parts.
package metadata
