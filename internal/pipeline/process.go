package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"lrcsync/internal/logging"
	"lrcsync/internal/lyrics"
	"lrcsync/internal/services"
	"lrcsync/internal/sidecar"
)

// process handles one file. ok is false when cancellation interrupted the
// file; such files are not recorded.
func (o *Orchestrator) process(ctx context.Context, path string, index int) (ProcessResult, bool) {
	ctx = services.WithFile(ctx, path)
	logger := logging.WithContext(ctx, o.logger)
	result := ProcessResult{Path: path, Index: index}

	if reason, skip := o.deps.Writer.ShouldSkip(path); skip {
		logger.Debug("sidecar present, lookup skipped", logging.String("reason", reason))
		result.Kind = ResultSkipped
		result.Reason = reason
		result.SidecarPath = sidecar.PathFor(path)
		return result, true
	}

	track, err := o.deps.Extractor.Extract(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return result, false
		}
		if errors.Is(err, fs.ErrNotExist) {
			result.Kind = ResultSkipped
			result.Reason = sidecar.ReasonAudioMissing
			return result, true
		}
		return o.fail(logger, result, "metadata extraction failed", "extract_failed",
			"the file is not a readable audio file; re-encode or remove it", err), true
	}
	result.Track = track

	candidates, err := o.deps.Lyrics.Query(ctx, lyrics.QueryFor(track))
	if err != nil {
		if ctx.Err() != nil {
			return result, false
		}
		return o.fail(logger, result, "lyrics lookup failed", "lookup_failed",
			"check network connectivity; rerun to retry this file", err), true
	}
	if len(candidates) == 0 {
		logger.Info("no synced lyrics found",
			logging.String(logging.FieldEventType, "no_match"),
			logging.String("artist", track.Artist),
			logging.String("title", track.Title),
		)
		result.Kind = ResultNoMatch
		return result, true
	}

	best := candidates[0]
	outcome, err := o.deps.Writer.Write(path, best)
	if err != nil {
		return o.fail(logger, result, "sidecar write failed", "write_failed",
			"check directory permissions and free disk space", err), true
	}
	result.SidecarPath = outcome.Path
	if outcome.Kind == sidecar.Skipped {
		logger.Info("sidecar skipped",
			logging.String(logging.FieldEventType, "file_skipped"),
			logging.String("reason", outcome.Reason),
		)
		result.Kind = ResultSkipped
		result.Reason = outcome.Reason
		return result, true
	}

	result.Kind = ResultWritten
	result.Confidence = best.Confidence
	result.Exact = best.Exact
	result.Weak = best.Weak
	logger.Info("sidecar written",
		logging.String(logging.FieldEventType, "file_written"),
		logging.String("artist", track.Artist),
		logging.String("title", track.Title),
		logging.Int("candidates", len(candidates)),
		logging.Float64("confidence", best.Confidence),
		logging.Bool("exact", best.Exact),
		logging.Bool("weak", best.Weak),
		logging.Int64("record_id", best.ID),
		logging.Duration("duration_delta", best.DurationDelta),
		logging.String("sidecar_path", outcome.Path),
	)
	return result, true
}

func (o *Orchestrator) fail(logger *slog.Logger, result ProcessResult, msg, eventType, hint string, err error) ProcessResult {
	result.Kind = ResultFailed
	result.Err = err
	result.Reason = err.Error()
	attrs := append(logging.ErrorAttrs(err), logging.String(logging.FieldErrorHint, hint))
	logging.WarnWithContext(logger, msg, eventType, attrs...)
	return result
}
