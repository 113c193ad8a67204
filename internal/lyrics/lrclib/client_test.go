package lrclib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lrcsync/internal/lyrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL + "/api", UserAgent: "lrcsync-test", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestSearchBuildsQueryAndParsesResponse(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 42, "trackName": "Song", "artistName": "Artist", "albumName": "Album",
			 "duration": 178.5, "instrumental": false,
			 "plainLyrics": "hello", "syncedLyrics": "[00:01.00]hello"},
			{"id": 43, "trackName": "Song", "artistName": "Artist", "albumName": null,
			 "duration": null, "instrumental": true, "plainLyrics": null, "syncedLyrics": null}
		]`))
	})

	records, err := client.Search(context.Background(), lyrics.SearchRequest{
		Title: "Song", Artist: "Artist", Album: "Album", Duration: 180 * time.Second,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if captured == nil {
		t.Fatal("expected request to reach server")
	}
	if captured.URL.Path != "/api/search" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	query := captured.URL.Query()
	if query.Get("track_name") != "Song" || query.Get("artist_name") != "Artist" {
		t.Fatalf("unexpected query %v", query)
	}
	if query.Get("album_name") != "Album" || query.Get("duration") != "180" {
		t.Fatalf("unexpected optional params %v", query)
	}
	if got := captured.Header.Get("User-Agent"); got != "lrcsync-test" {
		t.Fatalf("unexpected user agent %q", got)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.ID != 42 || first.Duration != 178500*time.Millisecond || first.SyncedLyrics != "[00:01.00]hello" {
		t.Fatalf("unexpected first record %+v", first)
	}
	second := records[1]
	if !second.Instrumental || second.Duration != 0 || second.SyncedLyrics != "" {
		t.Fatalf("unexpected second record %+v", second)
	}
}

func TestSearchSendsEmptyArtist(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := client.Search(context.Background(), lyrics.SearchRequest{Title: "Bohemian Rhapsody"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
	if rawQuery != "artist_name=&track_name=Bohemian+Rhapsody" {
		t.Fatalf("unexpected query %q", rawQuery)
	}
}

func TestSearchFreeText(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.Search(context.Background(), lyrics.SearchRequest{Query: "Song Artist"}); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if rawQuery != "q=Song+Artist" {
		t.Fatalf("unexpected query %q", rawQuery)
	}
}

func TestSearchStatusErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), lyrics.SearchRequest{Title: "Song"})
	var status *lyrics.StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if status.StatusCode != http.StatusTooManyRequests || status.Body != "slow down" {
		t.Fatalf("unexpected status error %+v", status)
	}
	if !lyrics.IsRetryable(err) {
		t.Fatal("429 should be retryable")
	}
}

func TestSearchNotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	records, err := client.Search(context.Background(), lyrics.SearchRequest{Title: "Song"})
	if err != nil {
		t.Fatalf("expected no error for 404, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestSearchMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	})

	_, err := client.Search(context.Background(), lyrics.SearchRequest{Title: "Song"})
	if !errors.Is(err, lyrics.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if lyrics.IsRetryable(err) {
		t.Fatal("malformed responses should not be retried")
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "lrclib.net/api"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
