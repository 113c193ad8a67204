package lyrics

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// [mm:ss], [mm:ss.x], [mm:ss.xx], [mm:ss.xxx]; a colon separator before the
// fraction is tolerated.
var stampPattern = regexp.MustCompile(`^\[(\d{1,3}):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

// ParseLRC extracts timestamped lines from LRC text. A line may carry several
// leading stamps; it is emitted once per stamp. ID tags such as [ar:Artist]
// and unstamped lines are ignored. The result is sorted by time, stable for
// equal stamps.
func ParseLRC(text string) []Line {
	var lines []Line
	for raw := range strings.Lines(text) {
		rest := strings.TrimSpace(raw)
		var stamps []time.Duration
		for {
			m := stampPattern.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			stamps = append(stamps, parseStamp(m[1], m[2], m[3]))
			rest = rest[len(m[0]):]
		}
		if len(stamps) == 0 {
			continue
		}
		body := strings.TrimSpace(rest)
		for _, stamp := range stamps {
			lines = append(lines, Line{Time: stamp, Text: body})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}

func parseStamp(minutes, seconds, fraction string) time.Duration {
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	d := time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	if fraction != "" {
		f, _ := strconv.Atoi(fraction)
		for i := len(fraction); i < 3; i++ {
			f *= 10
		}
		d += time.Duration(f) * time.Millisecond
	}
	return d
}

// FormatTimestamp renders d as an LRC [mm:ss.xx] stamp. Minutes are not
// wrapped at 60; hundredths are truncated.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d.Milliseconds() / 10
	cs := total % 100
	secs := (total / 100) % 60
	mins := total / 6000
	return fmt.Sprintf("[%02d:%02d.%02d]", mins, secs, cs)
}

// FormatLRC renders lines as newline-terminated [mm:ss.xx]text entries in
// ascending time order, stable for equal stamps.
func FormatLRC(lines []Line) string {
	ordered := append([]Line(nil), lines...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time < ordered[j].Time
	})
	var b strings.Builder
	for _, line := range ordered {
		b.WriteString(FormatTimestamp(line.Time))
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
