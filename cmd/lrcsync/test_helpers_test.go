package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"lrcsync/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	musicDir   string
	server     *httptest.Server
}

// lrclibHandler answers /api/search with one synced record for "Song One"
// and nothing for every other title.
func lrclibHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/search" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	title := r.URL.Query().Get("track_name")
	if title == "" {
		title = r.URL.Query().Get("q")
	}
	if !strings.HasPrefix(title, "Song One") {
		_, _ = w.Write([]byte(`[]`))
		return
	}
	_, _ = w.Write([]byte(`[{"id": 7, "trackName": "Song One", "artistName": "Artist",
		"albumName": "Album", "duration": 180, "instrumental": false,
		"plainLyrics": "one", "syncedLyrics": "[00:02.00]second line\n[00:01.00]first line"}]`))
}

func setupCLITestEnv(t *testing.T, handler http.HandlerFunc) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "home", ".config"))
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("LRCSYNC_BASE_URL", "")
	t.Setenv("LRCSYNC_LOG_LEVEL", "")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.URL+"/api"), testsupport.WithWorkers(2))
	cfg.Logging.Level = "error"
	configPath := testsupport.WriteConfigFile(t, filepath.Join(base, "lrcsync.toml"), cfg)

	musicDir := filepath.Join(base, "music")
	testsupport.WriteTaggedMP3(t, filepath.Join(musicDir, "Artist", "01 Song One.mp3"), testsupport.Tags{
		Title:  "Song One",
		Artist: "Artist",
		Album:  "Album",
	})
	testsupport.WriteUntaggedMP3(t, filepath.Join(musicDir, "Artist", "02 Unknown Tune.mp3"))

	return &cliTestEnv{configPath: configPath, musicDir: musicDir, server: server}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
