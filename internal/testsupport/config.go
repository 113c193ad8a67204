package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lrcsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp log directory per
// test, fast retry timings, and a single worker. Options apply afterwards.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Lyrics.BaseURL = "http://127.0.0.1:0/api"
	cfgVal.Lyrics.RequestTimeoutSeconds = 2
	cfgVal.Retry.InitialBackoffMs = 1
	cfgVal.Retry.MaxBackoffMs = 5
	cfgVal.Pipeline.Workers = 1
	cfgVal.Media.FFprobeBinary = filepath.Join(base, "bin", "ffprobe-missing")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBaseURL points the lyrics provider at url (usually an httptest server).
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lyrics.BaseURL = url
	}
}

// WithSkipExisting switches the sidecar writer to skip-existing mode.
func WithSkipExisting() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sidecar.Mode = config.SidecarModeSkipExisting
	}
}

// WithWorkers overrides the pipeline worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
	}
}

// WithStubbedFFprobe writes a shell script that prints payload as ffprobe JSON
// and points the config at it.
func WithStubbedFFprobe(payload string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "ffprobe")
		script := "#!/bin/sh\ncat <<'JSON'\n" + payload + "\nJSON\n"
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write ffprobe stub: %v", err)
		}
		b.cfg.Media.FFprobeBinary = target
	}
}

// WriteConfigFile encodes cfg as TOML at path and returns path.
func WriteConfigFile(t testing.TB, path string, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	WriteFile(t, path, data)
	return path
}
