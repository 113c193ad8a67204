package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lrcsync/internal/logging"
	"lrcsync/internal/scanner"
	"lrcsync/internal/services"
)

const defaultWorkers = 4

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Scanner   *scanner.Scanner
	Extractor Extractor
	Lyrics    LyricsClient
	Writer    SidecarWriter
	Logger    *slog.Logger
}

// Options tunes an Orchestrator.
type Options struct {
	Workers  int
	NewRunID func() string
	Now      func() time.Time
}

// Orchestrator runs scan, extract, query, write over a tree.
type Orchestrator struct {
	deps     Deps
	workers  int
	newRunID func() string
	now      func() time.Time
	logger   *slog.Logger
}

// New builds an Orchestrator.
func New(deps Deps, opts Options) *Orchestrator {
	if deps.Scanner == nil {
		deps.Scanner = scanner.New(scanner.Options{Logger: deps.Logger})
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		deps:     deps,
		workers:  workers,
		newRunID: newRunID,
		now:      now,
		logger:   logging.NewComponentLogger(deps.Logger, "pipeline"),
	}
}

// Run processes root synchronously, delivering events to sink (which may be
// nil). A cancelled run returns the partial summary with ctx.Err(). An
// invalid root returns services.ErrInvalidRoot and an empty Failed summary.
func (o *Orchestrator) Run(ctx context.Context, root string, sink EventSink) (Summary, error) {
	return o.execute(ctx, root, sink, nil)
}

func (o *Orchestrator) execute(ctx context.Context, root string, sink EventSink, onState func(State)) (Summary, error) {
	runID := o.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	c := newCollector(runID, root, o.now(), sink, onState)

	c.setState(StateScanning)
	scan, err := o.deps.Scanner.Open(root)
	if err != nil {
		logging.ErrorWithContext(logger, "scan root rejected", "run_failed",
			append(logging.ErrorAttrs(err),
				logging.String("root", root),
				logging.String(logging.FieldErrorHint, "check that the directory exists and is readable"),
			)...,
		)
		return c.finish(StateFailed, o.now()), err
	}
	c.summary.Root = scan.Root()
	logger.Info("lyrics run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("root", scan.Root()),
		logging.Int("workers", o.workers),
	)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for path := range scan.Files(ctx) {
		if ctx.Err() != nil {
			break
		}
		index := c.discover()
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c.started(path, index)
			result, ok := o.process(ctx, path, index)
			if ok {
				c.record(result)
			}
			return nil
		})
	}
	_ = g.Wait()

	c.setWarnings(scan.Warnings())
	state := StateCompleted
	if ctx.Err() != nil {
		state = StateCancelled
	}
	summary := c.finish(state, o.now())
	logger.Info("lyrics run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String("state", string(summary.State)),
		logging.Int("files_discovered", summary.Discovered),
		logging.Int("written", summary.Written),
		logging.Int("skipped", summary.Skipped),
		logging.Int("not_found", summary.NoMatch),
		logging.Int("failed", summary.Failed),
		logging.Int("warnings", len(summary.Warnings)),
		logging.Duration("elapsed", summary.Elapsed),
	)
	if state == StateCancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

// collector serializes result bookkeeping and event delivery.
type collector struct {
	mu      sync.Mutex
	summary Summary
	sink    EventSink
	onState func(State)
}

func newCollector(runID, root string, startedAt time.Time, sink EventSink, onState func(State)) *collector {
	return &collector{
		summary: Summary{RunID: runID, Root: root, State: StateIdle, StartedAt: startedAt},
		sink:    sink,
		onState: onState,
	}
}

func (c *collector) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(state)
}

func (c *collector) setStateLocked(state State) {
	if c.summary.State == state {
		return
	}
	c.summary.State = state
	if c.onState != nil {
		c.onState(state)
	}
}

func (c *collector) discover() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	index := c.summary.Discovered
	c.summary.Discovered++
	c.setStateLocked(StateProcessing)
	return index
}

func (c *collector) started(path string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitLocked(FileStarted{Path: path, Index: index, Discovered: c.summary.Discovered})
}

func (c *collector) record(result ProcessResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.summary
	s.Results = append(s.Results, result)
	switch result.Kind {
	case ResultWritten:
		s.Written++
	case ResultSkipped:
		s.Skipped++
	case ResultNoMatch:
		s.NoMatch++
	case ResultFailed:
		s.Failed++
	}
	c.emitLocked(FileResult{
		Path:       result.Path,
		Index:      result.Index,
		Result:     result,
		Completed:  len(s.Results),
		Discovered: s.Discovered,
	})
}

func (c *collector) setWarnings(warnings []scanner.Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Warnings = warnings
}

func (c *collector) finish(state State, now time.Time) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.summary
	sort.SliceStable(s.Results, func(i, j int) bool {
		return s.Results[i].Index < s.Results[j].Index
	})
	s.Failures = s.Failures[:0]
	for _, r := range s.Results {
		if r.Kind == ResultFailed {
			s.Failures = append(s.Failures, Failure{Path: r.Path, Reason: r.Reason, Kind: services.Kind(r.Err)})
		}
	}
	s.Elapsed = now.Sub(s.StartedAt)
	c.setStateLocked(state)
	summary := cloneSummary(*s)
	c.emitLocked(RunCompleted{Summary: summary})
	return summary
}

func (c *collector) emitLocked(evt Event) {
	if c.sink != nil {
		c.sink(evt)
	}
}

func cloneSummary(s Summary) Summary {
	s.Results = append([]ProcessResult(nil), s.Results...)
	s.Failures = append([]Failure(nil), s.Failures...)
	s.Warnings = append([]scanner.Warning(nil), s.Warnings...)
	return s
}
