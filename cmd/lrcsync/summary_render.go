package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"lrcsync/internal/pipeline"
)

const maxReasonWidth = 72

func outcomeColor(kind pipeline.ResultKind) color.Attribute {
	switch kind {
	case pipeline.ResultWritten:
		return color.FgGreen
	case pipeline.ResultSkipped:
		return color.FgCyan
	case pipeline.ResultNoMatch:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func outcomeLabel(kind pipeline.ResultKind, colorize bool) string {
	label := strings.ReplaceAll(string(kind), "_", " ")
	c := color.New(outcomeColor(kind), color.Bold)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(label)
}

func stateLabel(state pipeline.State, colorize bool) string {
	attr := color.FgGreen
	switch state {
	case pipeline.StateCancelled:
		attr = color.FgYellow
	case pipeline.StateFailed:
		attr = color.FgRed
	}
	c := color.New(attr)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(string(state))
}

// renderSummary formats a run summary as counts, failures, and scan warnings.
func renderSummary(s pipeline.Summary, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s %s in %s (%s)\n", s.RunID, stateLabel(s.State, colorize),
		s.Elapsed.Round(time.Millisecond), s.Root)

	rows := [][]string{
		{outcomeLabel(pipeline.ResultWritten, colorize), strconv.Itoa(s.Written)},
		{outcomeLabel(pipeline.ResultSkipped, colorize), strconv.Itoa(s.Skipped)},
		{outcomeLabel(pipeline.ResultNoMatch, colorize), strconv.Itoa(s.NoMatch)},
		{outcomeLabel(pipeline.ResultFailed, colorize), strconv.Itoa(s.Failed)},
		{"total", strconv.Itoa(s.Processed())},
	}
	b.WriteString(renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteByte('\n')

	if len(s.Failures) > 0 {
		b.WriteString("\nFailures\n")
		failureRows := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			failureRows = append(failureRows, []string{relativePath(s.Root, f.Path), f.Kind, truncate(f.Reason, maxReasonWidth)})
		}
		b.WriteString(renderTable([]string{"File", "Kind", "Reason"}, failureRows, nil))
		b.WriteByte('\n')
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\nScan warnings\n")
		warningRows := make([][]string, 0, len(s.Warnings))
		for _, w := range s.Warnings {
			reason := ""
			if w.Err != nil {
				reason = truncate(w.Err.Error(), maxReasonWidth)
			}
			warningRows = append(warningRows, []string{relativePath(s.Root, w.Path), reason})
		}
		b.WriteString(renderTable([]string{"Entry", "Error"}, warningRows, nil))
		b.WriteByte('\n')
	}
	return b.String()
}

func relativePath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
