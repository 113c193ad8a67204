package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lrcsync/internal/config"
	"lrcsync/internal/logging"
	"lrcsync/internal/services"
)

const (
	defaultRequestTimeout    = 15 * time.Second
	defaultDurationTolerance = 2 * time.Second
	defaultMinSimilarity     = 0.6
)

// Options configures a Client.
type Options struct {
	Retry             RetryPolicy
	RequestTimeout    time.Duration
	DurationTolerance time.Duration
	MinSimilarity     float64
	// MinInterval spaces consecutive provider calls across all goroutines
	// sharing the client. Zero disables spacing.
	MinInterval    time.Duration
	FallbackSearch bool
	// Sleep replaces SleepWithContext for backoff and spacing waits.
	Sleep  func(context.Context, time.Duration) error
	Logger *slog.Logger
}

// OptionsFromConfig maps the [lyrics] and [retry] sections onto client options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Retry: RetryPolicy{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff(),
			MaxBackoff:     cfg.MaxBackoff(),
			Multiplier:     cfg.Retry.Multiplier,
		},
		RequestTimeout:    cfg.RequestTimeout(),
		DurationTolerance: cfg.DurationTolerance(),
		MinSimilarity:     cfg.Lyrics.MinSimilarity,
		MinInterval:       cfg.MinInterval(),
		FallbackSearch:    cfg.Lyrics.FallbackSearch,
		Logger:            logger,
	}
}

// Client queries a Provider and ranks the results. It is safe for
// concurrent use.
type Client struct {
	provider Provider
	retry    RetryPolicy
	timeout  time.Duration
	rank     rankOptions
	fallback bool
	window   *rateWindow
	sleep    func(context.Context, time.Duration) error
	logger   *slog.Logger
}

// NewClient wraps provider with the given matching and retry options.
func NewClient(provider Provider, opts Options) *Client {
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.DurationTolerance <= 0 {
		opts.DurationTolerance = defaultDurationTolerance
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = defaultMinSimilarity
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepWithContext
	}
	return &Client{
		provider: provider,
		retry:    opts.Retry.normalized(),
		timeout:  opts.RequestTimeout,
		rank: rankOptions{
			tolerance:     opts.DurationTolerance,
			minSimilarity: opts.MinSimilarity,
		},
		fallback: opts.FallbackSearch,
		window:   newRateWindow(opts.MinInterval),
		sleep:    opts.Sleep,
		logger:   logging.NewComponentLogger(opts.Logger, "lyrics"),
	}
}

// Query returns the candidates for q, best first. An empty result with a nil
// error means no usable lyrics exist for the track.
func (c *Client) Query(ctx context.Context, q LyricsQuery) ([]LyricsCandidate, error) {
	if c == nil || c.provider == nil {
		return nil, services.Wrap(services.ErrProviderUnavailable, "lyrics", "query", "provider not configured", nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	variants := SearchVariants(q, c.fallback)
	for idx, req := range variants {
		records, err := c.search(ctx, logger, req)
		if err != nil {
			return nil, err
		}
		candidates := rankRecords(q, records, c.rank)
		logger.Debug("lyrics search variant",
			logging.Int("variant", idx+1),
			logging.Int("variants", len(variants)),
			logging.String("query", describeRequest(req)),
			logging.Int("records", len(records)),
			logging.Int("candidates", len(candidates)),
		)
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return []LyricsCandidate{}, nil
}

// search runs one request under the retry policy.
func (c *Client) search(ctx context.Context, logger *slog.Logger, req SearchRequest) ([]Record, error) {
	for attempt := 1; ; attempt++ {
		if wait := c.window.reserve(); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		records, err := c.attempt(ctx, req)
		if err == nil {
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsRetryable(err) {
			return nil, services.Wrap(services.ErrProviderUnavailable, "lyrics", "search", "provider rejected request", err)
		}
		if attempt >= c.retry.MaxAttempts {
			return nil, services.Wrap(services.ErrProviderUnavailable, "lyrics", "search",
				fmt.Sprintf("gave up after %d attempts", attempt), err)
		}
		backoff := c.retry.Backoff(attempt)
		logger.Warn("lyrics provider request failed, retrying",
			logging.Duration("backoff", backoff),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.retry.MaxAttempts),
			logging.Error(err),
			logging.String("reason", "transient network error or provider overload"),
			logging.String(logging.FieldEventType, "lyrics_retry"),
			logging.String(logging.FieldErrorHint, "check network connectivity or raise retry.max_attempts"),
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

func (c *Client) attempt(ctx context.Context, req SearchRequest) ([]Record, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	records, err := c.provider.Search(reqCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("request timed out after %s: %w", c.timeout, err)
		}
		return nil, err
	}
	return records, nil
}

func describeRequest(req SearchRequest) string {
	if req.IsFreeText() {
		return "q=" + req.Query
	}
	return fmt.Sprintf("title=%q artist=%q album=%q", req.Title, req.Artist, req.Album)
}
