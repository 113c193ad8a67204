// Package lrclib implements lyrics.Provider against the LRCLIB search API.
package lrclib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"lrcsync/internal/lyrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultBaseURL   = "https://lrclib.net/api"
	defaultUserAgent = "lrcsync/dev"
	maxErrorBody     = 4096
)

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config describes the LRCLIB client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient HTTPDoer
}

// Client wraps the LRCLIB REST API.
type Client struct {
	baseURL   *url.URL
	userAgent string
	http      HTTPDoer
}

// New creates a Client from the supplied configuration. Timeouts are applied
// per request by the caller's context, so the default HTTP client has none.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("lrclib: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("lrclib: base url %q must be absolute", base)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	doer := cfg.HTTPClient
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{baseURL: baseURL, userAgent: userAgent, http: doer}, nil
}

type record struct {
	ID           int64    `json:"id"`
	TrackName    string   `json:"trackName"`
	ArtistName   string   `json:"artistName"`
	AlbumName    string   `json:"albumName"`
	Duration     *float64 `json:"duration"`
	Instrumental bool     `json:"instrumental"`
	PlainLyrics  *string  `json:"plainLyrics"`
	SyncedLyrics *string  `json:"syncedLyrics"`
}

// Search queries /search. Structured requests always send track_name and
// artist_name, even when empty. A 404 means no records.
func (c *Client) Search(ctx context.Context, req lyrics.SearchRequest) ([]lyrics.Record, error) {
	if c == nil {
		return nil, errors.New("lrclib: client is nil")
	}
	endpoint := c.baseURL.JoinPath("search")
	endpoint.RawQuery = searchParams(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("lrclib: build search request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lrclib: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &lyrics.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload []record
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("lrclib: read search response: %w", ctxErr)
		}
		return nil, fmt.Errorf("lrclib: decode search response: %w: %w", lyrics.ErrMalformedResponse, err)
	}

	records := make([]lyrics.Record, 0, len(payload))
	for _, entry := range payload {
		records = append(records, lyrics.Record{
			ID:           entry.ID,
			TrackName:    entry.TrackName,
			ArtistName:   entry.ArtistName,
			AlbumName:    entry.AlbumName,
			Duration:     secondsToDuration(entry.Duration),
			Instrumental: entry.Instrumental,
			PlainLyrics:  deref(entry.PlainLyrics),
			SyncedLyrics: deref(entry.SyncedLyrics),
		})
	}
	return records, nil
}

func searchParams(req lyrics.SearchRequest) url.Values {
	params := url.Values{}
	if req.IsFreeText() {
		params.Set("q", strings.TrimSpace(req.Query))
		return params
	}
	params.Set("track_name", req.Title)
	params.Set("artist_name", req.Artist)
	if req.Album != "" {
		params.Set("album_name", req.Album)
	}
	if req.Duration > 0 {
		params.Set("duration", strconv.FormatInt(int64(math.Round(req.Duration.Seconds())), 10))
	}
	return params
}

func secondsToDuration(v *float64) time.Duration {
	if v == nil || *v <= 0 || math.IsNaN(*v) {
		return 0
	}
	return time.Duration(*v * float64(time.Second))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
