package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lrcsync/internal/config"
	"lrcsync/internal/logging"
	"lrcsync/internal/pipeline"
	"lrcsync/internal/runlock"
	"lrcsync/internal/services"
)

type fetchOptions struct {
	skipExisting   bool
	workers        int
	tolerance      float64
	attempts       int
	timeout        time.Duration
	followSymlinks bool
	dryRun         bool
	json           bool
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch <dir>",
		Short: "Fetch synced lyrics for every audio file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, ctx, args[0], opts, runSettings{dryRun: opts.dryRun})
		},
	}

	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", false, "Leave existing non-empty .lrc files untouched")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Concurrent lookups (overrides pipeline.workers)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "Duration tolerance in seconds (overrides lyrics.duration_tolerance_seconds)")
	cmd.Flags().IntVar(&opts.attempts, "attempts", 0, "Provider attempts per search (overrides retry.max_attempts)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-request provider timeout (overrides lyrics.request_timeout_seconds)")
	cmd.Flags().BoolVar(&opts.followSymlinks, "follow-symlinks", false, "Follow symlinked directories")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Look up lyrics without writing sidecars")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the run summary as JSON")
	return cmd
}

// applyFetchOverrides returns a copy of base with explicitly set flags applied.
func applyFetchOverrides(cmd *cobra.Command, base *config.Config, opts fetchOptions) (*config.Config, error) {
	cfg := *base
	flags := cmd.Flags()
	if flags.Changed("skip-existing") {
		cfg.Sidecar.Mode = config.SidecarModeOverwrite
		if opts.skipExisting {
			cfg.Sidecar.Mode = config.SidecarModeSkipExisting
		}
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = opts.workers
	}
	if flags.Changed("tolerance") {
		cfg.Lyrics.DurationToleranceSeconds = opts.tolerance
	}
	if flags.Changed("attempts") {
		cfg.Retry.MaxAttempts = opts.attempts
	}
	if flags.Changed("timeout") {
		if opts.timeout < time.Second {
			return nil, services.Wrap(services.ErrConfiguration, "cli", "flags", "--timeout must be at least 1s", nil)
		}
		cfg.Lyrics.RequestTimeoutSeconds = int(opts.timeout.Round(time.Second) / time.Second)
	}
	if flags.Changed("follow-symlinks") {
		cfg.Scan.FollowSymlinks = opts.followSymlinks
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "flags", "", err)
	}
	return &cfg, nil
}

func runFetch(cmd *cobra.Command, cc *commandContext, root string, opts fetchOptions, settings runSettings) error {
	base, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := applyFetchOverrides(cmd, base, opts)
	if err != nil {
		return err
	}
	logger, err := cc.ensureLogger()
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockDir(), root)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("run lock not released", logging.Error(err), logging.String("lock_path", lock.Path()))
		}
	}()

	orch, err := buildOrchestrator(cfg, logger, settings)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()
	progress := newProgressReporter(stderr, !opts.json && isTerminal(stderr))
	summary, runErr := orch.Run(runCtx, root, progress.handle)
	progress.finish()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	out := cmd.OutOrStdout()
	if opts.json {
		if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, renderSummary(summary, shouldColorize(out)))
	}

	if summary.State == pipeline.StateCancelled {
		fmt.Fprintf(stderr, "Run cancelled; %d of %d discovered files processed\n", summary.Processed(), summary.Discovered)
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}
