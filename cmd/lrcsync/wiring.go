package main

import (
	"log/slog"
	"net/http"

	"lrcsync/internal/config"
	"lrcsync/internal/lyrics"
	"lrcsync/internal/lyrics/lrclib"
	"lrcsync/internal/metadata"
	"lrcsync/internal/pipeline"
	"lrcsync/internal/scanner"
	"lrcsync/internal/services"
	"lrcsync/internal/sidecar"
)

type runSettings struct {
	dryRun     bool
	httpClient lrclib.HTTPDoer
}

func newExtractor(cfg *config.Config, logger *slog.Logger) *metadata.Extractor {
	return metadata.NewExtractor(metadata.Options{
		Prober: metadata.NewFFprobeProber(cfg.Media.FFprobeBinary),
		Logger: logger,
	})
}

// buildOrchestrator wires the scanner, extractor, lyrics client, and sidecar
// writer described by cfg.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger, settings runSettings) (*pipeline.Orchestrator, error) {
	httpClient := settings.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	provider, err := lrclib.New(lrclib.Config{
		BaseURL:    cfg.Lyrics.BaseURL,
		UserAgent:  cfg.Lyrics.UserAgent,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "lyrics provider", cfg.Lyrics.BaseURL, err)
	}

	return pipeline.New(pipeline.Deps{
		Scanner: scanner.New(scanner.Options{
			Extensions:     cfg.Scan.Extensions,
			FollowSymlinks: cfg.Scan.FollowSymlinks,
			SkipHidden:     cfg.Scan.SkipHidden,
			Logger:         logger,
		}),
		Extractor: newExtractor(cfg, logger),
		Lyrics:    lyrics.NewClient(provider, lyrics.OptionsFromConfig(cfg, logger)),
		Writer: sidecar.NewWriter(sidecar.Options{
			SkipExisting: cfg.SkipExisting(),
			DryRun:       settings.dryRun,
			Logger:       logger,
		}),
		Logger: logger,
	}, pipeline.Options{Workers: cfg.Pipeline.Workers}), nil
}
