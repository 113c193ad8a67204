package main

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"lrcsync/internal/metadata"
	"lrcsync/internal/pipeline"
	"lrcsync/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type summaryView struct {
	RunID          string        `json:"run_id"`
	Root           string        `json:"root"`
	State          string        `json:"state"`
	Discovered     int           `json:"discovered"`
	Written        int           `json:"written"`
	Skipped        int           `json:"skipped"`
	NoMatch        int           `json:"no_match"`
	Failed         int           `json:"failed"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	StartedAt      time.Time     `json:"started_at"`
	Results        []resultView  `json:"results"`
	Warnings       []warningView `json:"warnings,omitempty"`
}

type resultView struct {
	Path        string  `json:"path"`
	Index       int     `json:"index"`
	Outcome     string  `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	Sidecar     string  `json:"sidecar,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Exact       bool    `json:"exact,omitempty"`
	Weak        bool    `json:"weak,omitempty"`
	Artist      string  `json:"artist,omitempty"`
	Title       string  `json:"title,omitempty"`
	TitleSource string  `json:"title_source,omitempty"`
}

type warningView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func newSummaryView(s pipeline.Summary) summaryView {
	view := summaryView{
		RunID:          s.RunID,
		Root:           s.Root,
		State:          string(s.State),
		Discovered:     s.Discovered,
		Written:        s.Written,
		Skipped:        s.Skipped,
		NoMatch:        s.NoMatch,
		Failed:         s.Failed,
		ElapsedSeconds: s.Elapsed.Seconds(),
		StartedAt:      s.StartedAt,
		Results:        make([]resultView, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		view.Results = append(view.Results, newResultView(r))
	}
	for _, w := range s.Warnings {
		msg := ""
		if w.Err != nil {
			msg = w.Err.Error()
		}
		view.Warnings = append(view.Warnings, warningView{Path: w.Path, Error: msg})
	}
	return view
}

func newResultView(r pipeline.ProcessResult) resultView {
	view := resultView{
		Path:        r.Path,
		Index:       r.Index,
		Outcome:     string(r.Kind),
		Reason:      r.Reason,
		Sidecar:     r.SidecarPath,
		Confidence:  r.Confidence,
		Exact:       r.Exact,
		Weak:        r.Weak,
		Artist:      r.Track.Artist,
		Title:       r.Track.Title,
		TitleSource: r.Track.TitleSource,
	}
	if r.Err != nil {
		view.ErrorKind = services.Kind(r.Err)
	}
	return view
}

type trackView struct {
	Path        string  `json:"path"`
	Format      string  `json:"format"`
	Title       string  `json:"title"`
	TitleSource string  `json:"title_source,omitempty"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	TrackNumber int     `json:"track_number,omitempty"`
	Duration    float64 `json:"duration_seconds,omitempty"`
	Sidecar     string  `json:"sidecar"`
}

func newTrackView(track metadata.AudioTrack, sidecarPath string) trackView {
	return trackView{
		Path:        track.Path,
		Format:      track.Format,
		Title:       track.Title,
		TitleSource: track.TitleSource,
		Artist:      track.Artist,
		Album:       track.Album,
		TrackNumber: track.TrackNumber,
		Duration:    track.Duration.Seconds(),
		Sidecar:     sidecarPath,
	}
}
