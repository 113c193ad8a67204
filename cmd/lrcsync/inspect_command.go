package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"lrcsync/internal/lyrics"
	"lrcsync/internal/sidecar"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the metadata and lyrics query derived from an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			track, err := newExtractor(cfg, logger).Extract(cmd.Context(), path)
			if err != nil {
				return err
			}
			sidecarPath := sidecar.PathFor(path)
			if asJSON {
				return writeJSON(cmd, newTrackView(track, sidecarPath))
			}

			query := lyrics.QueryFor(track)
			rows := [][]string{
				{"Path", track.Path},
				{"Format", track.Format},
				{"Title", fmt.Sprintf("%s (%s)", track.Title, track.TitleSource)},
				{"Artist", valueOrDash(track.Artist)},
				{"Album", valueOrDash(track.Album)},
				{"Duration", durationOrDash(track.Duration)},
				{"Sidecar", sidecarPath},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

			variants := lyrics.SearchVariants(query, cfg.Lyrics.FallbackSearch)
			variantRows := make([][]string, 0, len(variants))
			for idx, v := range variants {
				if v.IsFreeText() {
					variantRows = append(variantRows, []string{fmt.Sprint(idx + 1), "q=" + v.Query, "", ""})
					continue
				}
				variantRows = append(variantRows, []string{fmt.Sprint(idx + 1), v.Title, valueOrDash(v.Artist), yesNo(v.Album != "")})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Title / Query", "Artist", "Album"}, variantRows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the extracted track as JSON")
	return cmd
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func durationOrDash(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
