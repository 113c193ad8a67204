package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"lrcsync/internal/pipeline"
)

// progressReporter renders running counts while a run is in flight. The
// total is unknown until the scan finishes, so the bar is a counting spinner.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer, enabled bool) *progressReporter {
	if !enabled {
		return &progressReporter{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &progressReporter{bar: bar}
}

func (p *progressReporter) handle(evt pipeline.Event) {
	if p == nil || p.bar == nil {
		return
	}
	switch e := evt.(type) {
	case pipeline.FileStarted:
		p.bar.Describe(fmt.Sprintf("%d found · %s", e.Discovered, filepath.Base(e.Path)))
	case pipeline.FileResult:
		_ = p.bar.Add(1)
		p.bar.Describe(fmt.Sprintf("%d/%d %s · %s", e.Completed, e.Discovered, e.Result.Kind, filepath.Base(e.Path)))
	}
}

func (p *progressReporter) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
