package metadata

import (
	"context"
	"errors"
	"math"
	"time"

	"lrcsync/internal/media/ffprobe"
)

// ErrProberUnavailable is returned by a DurationProber whose backing tool is
// not installed. The extractor then leaves durations unset.
var ErrProberUnavailable = errors.New("duration prober unavailable")

// ProbeResult is what a DurationProber learns about a file.
type ProbeResult struct {
	Duration time.Duration
	Title    string
	Artist   string
	Album    string
}

// DurationProber reads durations (and container tags) from audio files.
type DurationProber interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

const defaultProbeTimeout = 10 * time.Second

// FFprobeProber implements DurationProber with the ffprobe binary.
type FFprobeProber struct {
	Binary  string
	Timeout time.Duration
}

// NewFFprobeProber returns a prober that runs binary ("ffprobe" when empty).
func NewFFprobeProber(binary string) *FFprobeProber {
	return &FFprobeProber{Binary: binary, Timeout: defaultProbeTimeout}
}

// Probe runs ffprobe against path.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if _, ok := ctx.Deadline(); !ok && p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		if errors.Is(err, ffprobe.ErrNotInstalled) {
			return ProbeResult{}, errors.Join(ErrProberUnavailable, err)
		}
		return ProbeResult{}, err
	}
	if result.AudioStreamCount() == 0 {
		return ProbeResult{}, errors.New("ffprobe: no audio stream")
	}
	out := ProbeResult{
		Title:  result.Tag("title"),
		Artist: result.Tag("artist"),
		Album:  result.Tag("album"),
	}
	if seconds := result.DurationSeconds(); seconds > 0 && !math.IsNaN(seconds) {
		out.Duration = time.Duration(seconds * float64(time.Second))
	}
	return out, nil
}
