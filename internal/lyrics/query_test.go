package lyrics

import (
	"testing"
	"time"

	"lrcsync/internal/metadata"
)

func TestQueryForKeepsEmptyFields(t *testing.T) {
	q := QueryFor(metadata.AudioTrack{Path: "/music/Bohemian Rhapsody.mp3", Title: " Bohemian Rhapsody "})
	if q.Title != "Bohemian Rhapsody" {
		t.Fatalf("unexpected title %q", q.Title)
	}
	if q.Artist != "" || q.Album != "" || q.Duration != 0 {
		t.Fatalf("expected empty optional fields, got %+v", q)
	}
}

func TestSearchVariantsWithoutFallback(t *testing.T) {
	q := LyricsQuery{Artist: "Queen", Title: "Bohemian Rhapsody (Remastered 2011)", Duration: 354 * time.Second}
	variants := SearchVariants(q, false)
	if len(variants) != 1 {
		t.Fatalf("expected single variant, got %+v", variants)
	}
	if variants[0].Title != q.Title || variants[0].Artist != "Queen" || variants[0].Duration != q.Duration {
		t.Fatalf("unexpected base variant %+v", variants[0])
	}
}

func TestSearchVariantsWithFallback(t *testing.T) {
	q := LyricsQuery{Artist: "Queen", Title: "Bohemian Rhapsody (Remastered 2011)", Album: "A Night at the Opera"}
	variants := SearchVariants(q, true)
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %+v", variants)
	}
	if variants[1].Title != "Bohemian Rhapsody" || variants[1].Album != "" {
		t.Fatalf("expected stripped title variant, got %+v", variants[1])
	}
	if !variants[2].IsFreeText() || variants[2].Query != "Bohemian Rhapsody (Remastered 2011) Queen" {
		t.Fatalf("expected free-text variant, got %+v", variants[2])
	}
}

func TestSearchVariantsDeduplicates(t *testing.T) {
	variants := SearchVariants(LyricsQuery{Title: "Yesterday"}, true)
	if len(variants) != 2 {
		t.Fatalf("expected structured and free-text variants, got %+v", variants)
	}
	if variants[1].Query != "Yesterday" {
		t.Fatalf("unexpected free-text query %q", variants[1].Query)
	}
}
