// Package sidecar writes synced lyrics next to audio files as .lrc files.
package sidecar

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lrcsync/internal/fileutil"
	"lrcsync/internal/logging"
	"lrcsync/internal/lyrics"
	"lrcsync/internal/services"
)

// Extension is the sidecar file extension.
const Extension = ".lrc"

const defaultMode fs.FileMode = 0o644

// Skip reasons.
const (
	ReasonAudioMissing  = "audio file no longer exists"
	ReasonSidecarExists = "sidecar already exists"
)

// Kind classifies a write outcome.
type Kind string

const (
	Written Kind = "written"
	Skipped Kind = "skipped"
)

// Outcome describes what Write did for one audio file.
type Outcome struct {
	Kind   Kind
	Reason string
	Path   string
}

// Options configures a Writer.
type Options struct {
	// SkipExisting leaves non-empty sidecars untouched.
	SkipExisting bool
	// DryRun reports Written without touching disk.
	DryRun bool
	Mode   fs.FileMode
	Logger *slog.Logger
}

// Writer writes sidecars atomically.
type Writer struct {
	skipExisting bool
	dryRun       bool
	mode         fs.FileMode
	logger       *slog.Logger
}

// NewWriter returns a Writer for opts.
func NewWriter(opts Options) *Writer {
	mode := opts.Mode
	if mode == 0 {
		mode = defaultMode
	}
	return &Writer{
		skipExisting: opts.SkipExisting,
		dryRun:       opts.DryRun,
		mode:         mode,
		logger:       logging.NewComponentLogger(opts.Logger, "sidecar"),
	}
}

// PathFor returns the sidecar path for audioPath: the same directory and stem
// with the extension replaced by .lrc.
func PathFor(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + Extension
}

// ShouldSkip reports whether audioPath already has a sidecar that
// skip-existing mode must preserve. It lets callers avoid a provider lookup.
func (w *Writer) ShouldSkip(audioPath string) (string, bool) {
	if w == nil || !w.skipExisting {
		return "", false
	}
	ok, err := fileutil.NonEmptyFile(PathFor(audioPath))
	if err != nil || !ok {
		return "", false
	}
	return ReasonSidecarExists, true
}

// Write stores candidate's lines as the sidecar of audioPath.
func (w *Writer) Write(audioPath string, candidate lyrics.LyricsCandidate) (Outcome, error) {
	target := PathFor(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Kind: Skipped, Reason: ReasonAudioMissing, Path: target}, nil
		}
		return Outcome{}, services.Wrap(services.ErrWriteFailed, "sidecar", "stat audio", audioPath, err)
	}
	if reason, skip := w.ShouldSkip(audioPath); skip {
		return Outcome{Kind: Skipped, Reason: reason, Path: target}, nil
	}
	if len(candidate.Lines) == 0 {
		return Outcome{}, services.Wrap(services.ErrWriteFailed, "sidecar", "render", "candidate has no lyric lines", nil)
	}

	content := lyrics.FormatLRC(candidate.Lines)
	if w.dryRun {
		w.logger.Debug("dry run, sidecar not written",
			logging.String("sidecar_path", target),
			logging.Int("lines", len(candidate.Lines)),
		)
		return Outcome{Kind: Written, Path: target}, nil
	}
	if err := fileutil.WriteFileAtomic(target, []byte(content), w.mode); err != nil {
		return Outcome{}, services.Wrap(services.ErrWriteFailed, "sidecar", "write", target, err)
	}
	w.logger.Debug("sidecar written",
		logging.String("sidecar_path", target),
		logging.Int("lines", len(candidate.Lines)),
		logging.Int("bytes", len(content)),
	)
	return Outcome{Kind: Written, Path: target}, nil
}
