package lyrics

import (
	"strings"

	"lrcsync/internal/metadata"
	"lrcsync/internal/textutil"
)

// QueryFor derives the lookup key for a track.
func QueryFor(track metadata.AudioTrack) LyricsQuery {
	return LyricsQuery{
		Artist:   strings.TrimSpace(track.Artist),
		Title:    strings.TrimSpace(track.Title),
		Album:    strings.TrimSpace(track.Album),
		Duration: track.Duration,
	}
}

// SearchVariants returns the ordered, de-duplicated requests tried for q.
// The first is always the structured title and artist search. With fallback
// enabled it continues with a variant-stripped title and a free-text query.
func SearchVariants(q LyricsQuery, fallback bool) []SearchRequest {
	base := SearchRequest{
		Title:    q.Title,
		Artist:   q.Artist,
		Album:    q.Album,
		Duration: q.Duration,
	}
	variants := []SearchRequest{base}
	if fallback {
		if stripped := textutil.StripVariant(q.Title); stripped != q.Title {
			variant := base
			variant.Title = stripped
			variant.Album = ""
			variants = append(variants, variant)
		}
		if text := strings.TrimSpace(q.Title + " " + q.Artist); text != "" {
			variants = append(variants, SearchRequest{Query: text})
		}
	}

	unique := make([]SearchRequest, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		sig := v.signature()
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
