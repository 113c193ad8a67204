package lyrics

import (
	"sort"
	"strings"
	"time"

	"lrcsync/internal/textutil"
)

// Confidence weights. The tier gaps keep confidence monotone with the
// ranking key: exact beats within-tolerance beats closeness.
const (
	weightExact     = 0.5
	weightTolerance = 0.3
	weightCloseness = 0.2
)

type rankOptions struct {
	tolerance     time.Duration
	minSimilarity float64
}

type scoredRecord struct {
	candidate LyricsCandidate
	within    bool
	order     int
}

// rankRecords filters unusable records and orders the rest best first.
func rankRecords(q LyricsQuery, records []Record, opts rankOptions) []LyricsCandidate {
	scored := make([]scoredRecord, 0, len(records))
	for idx, rec := range records {
		if rec.Instrumental || strings.TrimSpace(rec.SyncedLyrics) == "" {
			continue
		}
		lines := ParseLRC(rec.SyncedLyrics)
		if len(lines) == 0 {
			continue
		}
		exact := isExactMatch(q, rec)
		if !exact && matchSimilarity(q, rec) < opts.minSimilarity {
			continue
		}
		entry := scoredRecord{
			candidate: LyricsCandidate{
				ID:            rec.ID,
				Artist:        rec.ArtistName,
				Title:         rec.TrackName,
				Album:         rec.AlbumName,
				Duration:      rec.Duration,
				Lines:         lines,
				Exact:         exact,
				DurationDelta: -1,
			},
			order: idx,
		}
		if q.Duration > 0 {
			if rec.Duration > 0 {
				delta := q.Duration - rec.Duration
				if delta < 0 {
					delta = -delta
				}
				entry.candidate.DurationDelta = delta
				entry.within = delta <= opts.tolerance
			}
			entry.candidate.Weak = !entry.within
		}
		scored = append(scored, entry)
	}

	durationKnown := q.Duration > 0
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.candidate.Exact != b.candidate.Exact {
			return a.candidate.Exact
		}
		if durationKnown {
			if a.within != b.within {
				return a.within
			}
			da, db := a.candidate.DurationDelta, b.candidate.DurationDelta
			if da != db {
				if da < 0 {
					return false
				}
				if db < 0 {
					return true
				}
				return da < db
			}
		}
		return a.order < b.order
	})

	out := make([]LyricsCandidate, len(scored))
	for rank, entry := range scored {
		c := entry.candidate
		score := 0.0
		if c.Exact {
			score += weightExact
		}
		if entry.within {
			score += weightTolerance
		}
		if durationKnown {
			if c.DurationDelta >= 0 {
				score += weightCloseness / (1 + c.DurationDelta.Seconds())
			}
		} else {
			score += weightCloseness * (1 - float64(rank)/float64(len(scored)))
		}
		c.Confidence = score
		out[rank] = c
	}
	return out
}

func isExactMatch(q LyricsQuery, rec Record) bool {
	if !titleEqual(q.Title, rec.TrackName) {
		return false
	}
	if q.Artist == "" {
		return true
	}
	return textutil.Fold(q.Artist) == textutil.Fold(rec.ArtistName)
}

func titleEqual(a, b string) bool {
	fa, fb := textutil.Fold(a), textutil.Fold(b)
	if fa == "" || fb == "" {
		return false
	}
	if fa == fb {
		return true
	}
	return textutil.Fold(textutil.StripVariant(a)) == textutil.Fold(textutil.StripVariant(b))
}

// matchSimilarity is the weaker of the title and artist similarities. An
// absent query artist does not penalize the record.
func matchSimilarity(q LyricsQuery, rec Record) float64 {
	title := max(
		textutil.Similarity(q.Title, rec.TrackName),
		textutil.Similarity(textutil.StripVariant(q.Title), textutil.StripVariant(rec.TrackName)),
	)
	if q.Artist == "" {
		return title
	}
	return min(title, textutil.Similarity(q.Artist, rec.ArtistName))
}
