package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"lrcsync/internal/config"
	"lrcsync/internal/runlock"
	"lrcsync/internal/services"
	"lrcsync/internal/testsupport"
)

func TestFetchWritesSidecarsAndReportsJSON(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)

	out, _, err := runCLI(t, []string{"fetch", "--json", env.musicDir}, env.configPath)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}

	var summary summaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.State != "completed" || summary.Discovered != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Written != 1 || summary.NoMatch != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.Results[0].Outcome != "written" || summary.Results[1].Outcome != "no_match" {
		t.Fatalf("unexpected outcomes %+v", summary.Results)
	}
	if summary.Results[1].Title != "Unknown Tune" || summary.Results[1].TitleSource != "filename" {
		t.Fatalf("expected title from file name, got %+v", summary.Results[1])
	}

	data, err := os.ReadFile(filepath.Join(env.musicDir, "Artist", "01 Song One.lrc"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if string(data) != "[00:01.00]first line\n[00:02.00]second line\n" {
		t.Fatalf("unexpected sidecar %q", data)
	}
}

func TestFetchSkipExistingSecondRun(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)

	if _, _, err := runCLI(t, []string{"fetch", "--json", env.musicDir}, env.configPath); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	out, _, err := runCLI(t, []string{"fetch", "--json", "--skip-existing", env.musicDir}, env.configPath)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	var summary summaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 || summary.NoMatch != 1 {
		t.Fatalf("expected existing sidecar to be skipped, got %+v", summary)
	}
}

func TestFetchReportsFailuresWithNonZeroExit(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)
	testsupport.WriteFile(t, filepath.Join(env.musicDir, "broken.wav"), []byte("definitely not RIFF"))

	out, _, err := runCLI(t, []string{"fetch", env.musicDir}, env.configPath)
	if err == nil {
		t.Fatal("expected error when a file fails")
	}
	requireContains(t, err.Error(), "1 file(s) failed")
	requireContains(t, out, "Failures")
	requireContains(t, out, "broken.wav")
	requireContains(t, out, "unreadable_file")
}

func TestFetchRejectsInvalidRoot(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)

	_, _, err := runCLI(t, []string{"fetch", filepath.Join(env.musicDir, "missing")}, env.configPath)
	if !errors.Is(err, services.ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot, got %v", err)
	}
}

func TestFetchRefusesConcurrentRunOnSameRoot(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)
	cfg, err := newCommandContext(&env.configPath, new(string), new(bool)).ensureConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	lock, err := runlock.Acquire(cfg.LockDir(), env.musicDir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"fetch", env.musicDir}, env.configPath)
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestFetchRejectsInvalidFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)

	_, _, err := runCLI(t, []string{"fetch", "--workers", "0", env.musicDir}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFetchDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)

	out, _, err := runCLI(t, []string{"fetch", "--dry-run", env.musicDir}, env.configPath)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	requireContains(t, out, "written")
	if _, err := os.Stat(filepath.Join(env.musicDir, "Artist", "01 Song One.lrc")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote a sidecar, stat err=%v", err)
	}
}

func TestApplyFetchOverridesSkipExisting(t *testing.T) {
	tests := []struct {
		name string
		base string
		args []string
		want string
	}{
		{"flag unset keeps config", config.SidecarModeSkipExisting, nil, config.SidecarModeSkipExisting},
		{"flag enables", config.SidecarModeOverwrite, []string{"--skip-existing"}, config.SidecarModeSkipExisting},
		{"explicit false overrides config", config.SidecarModeSkipExisting, []string{"--skip-existing=false"}, config.SidecarModeOverwrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := testsupport.NewConfig(t)
			base.Sidecar.Mode = tt.base

			var opts fetchOptions
			cmd := &cobra.Command{Use: "fetch"}
			cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", false, "")
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			cfg, err := applyFetchOverrides(cmd, base, opts)
			if err != nil {
				t.Fatalf("applyFetchOverrides: %v", err)
			}
			if cfg.Sidecar.Mode != tt.want {
				t.Fatalf("mode = %q, want %q", cfg.Sidecar.Mode, tt.want)
			}
			if base.Sidecar.Mode != tt.base {
				t.Fatalf("base config mutated to %q", base.Sidecar.Mode)
			}
		})
	}
}

func TestFetchSkipExistingFalseOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t, lrclibHandler)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(env.server.URL+"/api"), testsupport.WithSkipExisting())
	cfg.Logging.Level = "error"
	configPath := testsupport.WriteConfigFile(t, filepath.Join(t.TempDir(), "skip.toml"), cfg)

	sidecarPath := filepath.Join(env.musicDir, "Artist", "01 Song One.lrc")
	testsupport.WriteFile(t, sidecarPath, []byte("[00:00.00]stale\n"))

	out, _, err := runCLI(t, []string{"fetch", "--json", env.musicDir}, configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var summary summaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 {
		t.Fatalf("expected config skip-existing to apply, got %+v", summary)
	}

	out, _, err = runCLI(t, []string{"fetch", "--json", "--skip-existing=false", env.musicDir}, configPath)
	if err != nil {
		t.Fatalf("fetch with override: %v", err)
	}
	summary = summaryView{}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Written != 1 || summary.Skipped != 0 {
		t.Fatalf("expected overwrite after --skip-existing=false, got %+v", summary)
	}
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if string(data) != "[00:01.00]first line\n[00:02.00]second line\n" {
		t.Fatalf("expected fresh lyrics, got %q", data)
	}
}
