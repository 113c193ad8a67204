package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"

	"lrcsync/internal/logging"
	"lrcsync/internal/services"
)

// Options configures an Extractor.
type Options struct {
	// Prober supplies durations. Nil disables duration lookup.
	Prober DurationProber
	Logger *slog.Logger
}

// Extractor reads AudioTracks from files. It is safe for concurrent use.
type Extractor struct {
	prober      DurationProber
	logger      *slog.Logger
	missingOnce sync.Once
}

// NewExtractor builds an Extractor.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{
		prober: opts.Prober,
		logger: logging.NewComponentLogger(opts.Logger, "metadata"),
	}
}

// Extract reads path into an AudioTrack. Files that cannot be parsed as a
// supported audio format fail with services.ErrUnreadableFile, with or
// without a prober; files that simply carry no tags succeed with fields
// derived from the file name.
func (e *Extractor) Extract(ctx context.Context, path string) (AudioTrack, error) {
	if err := ctx.Err(); err != nil {
		return AudioTrack{}, err
	}
	track := AudioTrack{Path: path, Format: FormatFromPath(path)}

	file, err := os.Open(path)
	if err != nil {
		return AudioTrack{}, services.Wrap(services.ErrUnreadableFile, "metadata", "open", path, err)
	}
	defer file.Close()

	hasTags := false
	if track.Format == "wav" {
		if err := readWAV(file, &track); err != nil {
			return AudioTrack{}, services.Wrap(services.ErrUnreadableFile, "metadata", "decode wav", path, err)
		}
		// A valid RIFF header is proof enough that this is audio.
		hasTags = true
	} else {
		hasTags, err = readTags(file, &track)
		if err != nil {
			e.logger.Debug("tag read failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
			)
		}
		if !hasTags {
			if err := identifyContainer(file); err != nil {
				return AudioTrack{}, services.Wrap(services.ErrUnreadableFile, "metadata", "identify", path, err)
			}
		}
	}

	if e.prober != nil && (!track.HasDuration() || !complete(track)) {
		probe, err := e.prober.Probe(ctx, path)
		switch {
		case err == nil:
			if !track.HasDuration() {
				track.Duration = probe.Duration
			}
			fillProbeTags(&track, probe)
		case errors.Is(err, ErrProberUnavailable):
			e.missingOnce.Do(func() {
				logging.WarnWithContext(e.logger, "duration prober unavailable", "prober_missing",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "install ffprobe or set media.ffprobe_binary"),
					logging.String(logging.FieldImpact, "lyrics are matched without duration ranking"),
				)
			})
		case ctx.Err() != nil:
			return AudioTrack{}, ctx.Err()
		case !hasTags:
			return AudioTrack{}, services.Wrap(services.ErrUnreadableFile, "metadata", "probe", path, err)
		default:
			e.logger.Debug("duration probe failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
			)
		}
	}

	if track.Title == "" {
		title, artist := FromFilename(path)
		track.Title = title
		track.TitleSource = SourceFilename
		if track.Artist == "" {
			track.Artist = artist
		}
	}
	return track, nil
}

func complete(track AudioTrack) bool {
	return track.Title != "" && track.Artist != "" && track.Album != ""
}

// readTags reports whether a tag block was found. A missing tag block is not
// an error.
func readTags(r io.ReadSeeker, track *AudioTrack) (bool, error) {
	meta, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return false, nil
		}
		return false, err
	}
	track.Title = clean(meta.Title())
	track.Artist = clean(meta.Artist())
	if track.Artist == "" {
		track.Artist = clean(meta.AlbumArtist())
	}
	track.Album = clean(meta.Album())
	track.TrackNumber, _ = meta.Track()
	if track.Title != "" {
		track.TitleSource = SourceTags
	}
	return true, nil
}

func readWAV(r io.ReadSeeker, track *AudioTrack) error {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return errors.New("invalid RIFF/WAVE header")
	}
	duration, err := decoder.Duration()
	if err != nil {
		return fmt.Errorf("wav duration: %w", err)
	}
	track.Duration = duration
	return nil
}

func fillProbeTags(track *AudioTrack, probe ProbeResult) {
	if track.Title == "" {
		if title := clean(probe.Title); title != "" {
			track.Title = title
			track.TitleSource = SourceProbe
		}
	}
	if track.Artist == "" {
		track.Artist = clean(probe.Artist)
	}
	if track.Album == "" {
		track.Album = clean(probe.Album)
	}
}

func clean(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\x00", ""))
}
