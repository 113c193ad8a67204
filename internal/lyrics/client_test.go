package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"lrcsync/internal/services"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   []SearchRequest
	respond func(call int, req SearchRequest) ([]Record, error)
}

func (f *fakeProvider) Search(_ context.Context, req SearchRequest) ([]Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	call := len(f.calls)
	f.mu.Unlock()
	if f.respond == nil {
		return nil, nil
	}
	return f.respond(call, req)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func newTestClient(provider Provider, sleeper *sleepRecorder, fallback bool) *Client {
	return NewClient(provider, Options{
		Retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     time.Second,
			Multiplier:     2,
		},
		RequestTimeout:    time.Second,
		DurationTolerance: 2 * time.Second,
		MinSimilarity:     0.6,
		FallbackSearch:    fallback,
		Sleep:             sleeper.sleep,
	})
}

func newTestClientWithRetry(provider Provider, sleeper *sleepRecorder, policy RetryPolicy) *Client {
	return NewClient(provider, Options{
		Retry:             policy,
		RequestTimeout:    time.Second,
		DurationTolerance: 2 * time.Second,
		MinSimilarity:     0.6,
		FallbackSearch:    true,
		Sleep:             sleeper.sleep,
	})
}

func songRecord(id int64, duration time.Duration) Record {
	return Record{ID: id, TrackName: "Song", ArtistName: "Artist", Duration: duration, SyncedLyrics: sampleSynced}
}

func unavailable() error {
	return &StatusError{StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
}

func TestQueryRecoversAfterTransientFailures(t *testing.T) {
	provider := &fakeProvider{respond: func(call int, _ SearchRequest) ([]Record, error) {
		if call < 3 {
			return nil, unavailable()
		}
		return []Record{songRecord(1, 180*time.Second)}, nil
	}}
	sleeper := &sleepRecorder{}
	client := newTestClient(provider, sleeper, false)

	got, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song", Duration: 180 * time.Second})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected candidates %+v", got)
	}
	if provider.callCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", provider.callCount())
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if fmt.Sprint(sleeper.delays) != fmt.Sprint(want) {
		t.Fatalf("expected backoff %v, got %v", want, sleeper.delays)
	}
}

func TestQueryGivesUpAfterMaxAttempts(t *testing.T) {
	for _, attempts := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("attempts=%d", attempts), func(t *testing.T) {
			provider := &fakeProvider{respond: func(int, SearchRequest) ([]Record, error) {
				return nil, errors.New("connection reset by peer")
			}}
			sleeper := &sleepRecorder{}
			client := newTestClientWithRetry(provider, sleeper, RetryPolicy{
				MaxAttempts:    attempts,
				InitialBackoff: 100 * time.Millisecond,
				MaxBackoff:     time.Second,
				Multiplier:     2,
			})

			_, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song"})
			if !errors.Is(err, services.ErrProviderUnavailable) {
				t.Fatalf("expected ErrProviderUnavailable, got %v", err)
			}
			if provider.callCount() != attempts {
				t.Fatalf("expected %d attempts before giving up, got %d", attempts, provider.callCount())
			}
			if len(sleeper.delays) != attempts-1 {
				t.Fatalf("expected %d backoff sleeps, got %v", attempts-1, sleeper.delays)
			}
			for i, d := range sleeper.delays {
				if want := min(100*time.Millisecond<<i, time.Second); d != want {
					t.Fatalf("backoff %d = %s, want %s", i, d, want)
				}
			}
		})
	}
}

func TestQueryRejectionFailsImmediately(t *testing.T) {
	provider := &fakeProvider{respond: func(int, SearchRequest) ([]Record, error) {
		return nil, &StatusError{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"}
	}}
	sleeper := &sleepRecorder{}
	client := newTestClient(provider, sleeper, true)

	_, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song"})
	if !errors.Is(err, services.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
	if provider.callCount() != 1 || len(sleeper.delays) != 0 {
		t.Fatalf("expected a single call without backoff, got %d calls and %v", provider.callCount(), sleeper.delays)
	}
}

func TestQueryRetriesRateLimit(t *testing.T) {
	provider := &fakeProvider{respond: func(call int, _ SearchRequest) ([]Record, error) {
		if call == 1 {
			return nil, &StatusError{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests"}
		}
		return []Record{songRecord(9, 0)}, nil
	}}
	client := newTestClient(provider, &sleepRecorder{}, false)

	got, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("unexpected candidates %+v", got)
	}
}

func TestQueryMalformedResponseIsNotRetried(t *testing.T) {
	provider := &fakeProvider{respond: func(int, SearchRequest) ([]Record, error) {
		return nil, fmt.Errorf("decode search response: %w", ErrMalformedResponse)
	}}
	client := newTestClient(provider, &sleepRecorder{}, false)

	_, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song"})
	if !errors.Is(err, services.ErrProviderUnavailable) || !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected classified malformed response, got %v", err)
	}
	if provider.callCount() != 1 {
		t.Fatalf("expected a single call, got %d", provider.callCount())
	}
}

func TestQueryFallsBackToStrippedTitle(t *testing.T) {
	provider := &fakeProvider{respond: func(_ int, req SearchRequest) ([]Record, error) {
		if req.Title == "Song" {
			return []Record{songRecord(4, 0)}, nil
		}
		return nil, nil
	}}
	client := newTestClient(provider, &sleepRecorder{}, true)

	got, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song (Live)", Album: "Live Album"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("expected fallback candidate, got %+v", got)
	}
	if provider.callCount() != 2 {
		t.Fatalf("expected 2 searches, got %d", provider.callCount())
	}
	if !got[0].Exact {
		t.Fatal("stripped title should still count as an exact match")
	}
}

func TestQueryFallsThroughWhenRecordsAreFilteredOut(t *testing.T) {
	provider := &fakeProvider{respond: func(call int, _ SearchRequest) ([]Record, error) {
		if call == 1 {
			return []Record{
				{ID: 1, TrackName: "Song", ArtistName: "Artist", Instrumental: true, SyncedLyrics: "[00:01.00]la"},
				{ID: 2, TrackName: "Song", ArtistName: "Artist", PlainLyrics: "plain only"},
			}, nil
		}
		return []Record{songRecord(3, 0)}, nil
	}}
	client := newTestClient(provider, &sleepRecorder{}, true)

	got, err := client.Query(context.Background(), LyricsQuery{Artist: "Artist", Title: "Song"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected candidate from the next variant, got %+v", got)
	}
	if provider.callCount() != 2 {
		t.Fatalf("expected 2 searches, got %d", provider.callCount())
	}
}

func TestQueryNoMatchReturnsEmpty(t *testing.T) {
	provider := &fakeProvider{}
	client := newTestClient(provider, &sleepRecorder{}, true)

	q := LyricsQuery{Artist: "Artist", Title: "Song (Live)"}
	got, err := client.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %+v", got)
	}
	if want := len(SearchVariants(q, true)); provider.callCount() != want {
		t.Fatalf("expected %d searches, got %d", want, provider.callCount())
	}
}

func TestQueryStopsWhenCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider := &fakeProvider{respond: func(int, SearchRequest) ([]Record, error) {
		return nil, unavailable()
	}}
	client := NewClient(provider, Options{
		Retry: RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: time.Second, Multiplier: 2},
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	_, err := client.Query(ctx, LyricsQuery{Artist: "Artist", Title: "Song"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrProviderUnavailable) {
		t.Fatalf("cancellation must not be classified as provider failure: %v", err)
	}
	if provider.callCount() != 1 {
		t.Fatalf("expected a single call, got %d", provider.callCount())
	}
}

func TestQueryAppliesRequestTimeout(t *testing.T) {
	var deadlines []time.Duration
	provider := &fakeProvider{respond: func(int, SearchRequest) ([]Record, error) {
		return nil, nil
	}}
	wrapped := providerFunc(func(ctx context.Context, req SearchRequest) ([]Record, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a per-request deadline")
		}
		deadlines = append(deadlines, time.Until(deadline))
		return provider.Search(ctx, req)
	})
	client := NewClient(wrapped, Options{RequestTimeout: 3 * time.Second})

	if _, err := client.Query(context.Background(), LyricsQuery{Title: "Song"}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(deadlines) != 1 || deadlines[0] > 3*time.Second {
		t.Fatalf("unexpected deadlines %v", deadlines)
	}
}

type providerFunc func(ctx context.Context, req SearchRequest) ([]Record, error)

func (f providerFunc) Search(ctx context.Context, req SearchRequest) ([]Record, error) {
	return f(ctx, req)
}

func TestRetryPolicyBackoffCaps(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 2 * time.Second, Multiplier: 2}
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 2 * time.Second}
	for i, expected := range want {
		if got := policy.Backoff(i + 1); got != expected {
			t.Fatalf("attempt %d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", errors.New("dial tcp: connection refused"), true},
		{"timeout", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"rate limited", &StatusError{StatusCode: 429}, true},
		{"server error", &StatusError{StatusCode: 502}, true},
		{"not found", &StatusError{StatusCode: 404}, false},
		{"malformed", fmt.Errorf("decode: %w", ErrMalformedResponse), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRateWindowSpacesReservations(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	window := newRateWindow(time.Second)
	window.now = func() time.Time { return now }

	if wait := window.reserve(); wait != 0 {
		t.Fatalf("first reservation should not wait, got %s", wait)
	}
	if wait := window.reserve(); wait != time.Second {
		t.Fatalf("expected 1s wait, got %s", wait)
	}
	now = base.Add(250 * time.Millisecond)
	if wait := window.reserve(); wait != 1750*time.Millisecond {
		t.Fatalf("expected 1.75s wait, got %s", wait)
	}
	now = base.Add(10 * time.Second)
	if wait := window.reserve(); wait != 0 {
		t.Fatalf("expected no wait after idle period, got %s", wait)
	}
}

func TestSleepWithContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := SleepWithContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleep did not return promptly")
	}
}
