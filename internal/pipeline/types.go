package pipeline

import (
	"context"
	"time"

	"lrcsync/internal/lyrics"
	"lrcsync/internal/metadata"
	"lrcsync/internal/scanner"
	"lrcsync/internal/sidecar"
)

// State is the lifecycle state of a run.
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// ResultKind classifies the outcome for one audio file.
type ResultKind string

const (
	ResultWritten ResultKind = "written"
	ResultSkipped ResultKind = "skipped"
	ResultNoMatch ResultKind = "no_match"
	ResultFailed  ResultKind = "failed"
)

// ProcessResult is the outcome for one audio file.
type ProcessResult struct {
	Path  string
	Index int
	Kind  ResultKind
	// Reason explains Skipped and Failed results.
	Reason string
	Err    error
	// SidecarPath and Confidence are set for Written results.
	SidecarPath string
	Confidence  float64
	Exact       bool
	Weak        bool
	Track       metadata.AudioTrack
}

// Failure is a failed path with its reason and error classification.
type Failure struct {
	Path   string
	Reason string
	Kind   string
}

// Summary aggregates a run.
type Summary struct {
	RunID      string
	Root       string
	State      State
	Discovered int
	Written    int
	Skipped    int
	NoMatch    int
	Failed     int
	// Results are in scan order.
	Results   []ProcessResult
	Failures  []Failure
	Warnings  []scanner.Warning
	StartedAt time.Time
	Elapsed   time.Duration
}

// Processed returns the number of recorded results.
func (s Summary) Processed() int {
	return s.Written + s.Skipped + s.NoMatch + s.Failed
}

// Event is a progress notification. Concrete types are FileStarted,
// FileResult and RunCompleted.
type Event interface {
	event()
}

// FileStarted is emitted when a worker picks up a file.
type FileStarted struct {
	Path  string
	Index int
	// Discovered is the running count of files found so far.
	Discovered int
}

// FileResult is emitted when a file's outcome is recorded.
type FileResult struct {
	Path       string
	Index      int
	Result     ProcessResult
	Completed  int
	Discovered int
}

// RunCompleted is the final event of every run.
type RunCompleted struct {
	Summary Summary
}

func (FileStarted) event()  {}
func (FileResult) event()   {}
func (RunCompleted) event() {}

// EventSink receives events synchronously and in order. It must not block
// for long; workers wait while it runs.
type EventSink func(Event)

// Extractor reads track metadata.
type Extractor interface {
	Extract(ctx context.Context, path string) (metadata.AudioTrack, error)
}

// LyricsClient finds ranked lyrics candidates.
type LyricsClient interface {
	Query(ctx context.Context, q lyrics.LyricsQuery) ([]lyrics.LyricsCandidate, error)
}

// SidecarWriter persists the chosen candidate.
type SidecarWriter interface {
	ShouldSkip(audioPath string) (string, bool)
	Write(audioPath string, candidate lyrics.LyricsCandidate) (sidecar.Outcome, error)
}
