package config

const (
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLyricsBaseURL          = "https://lrclib.net/api"
	defaultLyricsUserAgent        = "lrcsync/dev (https://github.com/lrcsync/lrcsync)"
	defaultRequestTimeoutSeconds  = 15
	defaultDurationToleranceSecs  = 2.0
	defaultMinSimilarity          = 0.6
	defaultRetryMaxAttempts       = 3
	defaultRetryInitialBackoffMs  = 500
	defaultRetryMaxBackoffMs      = 8000
	defaultRetryMultiplier        = 2.0
	defaultPipelineWorkers        = 4
	defaultFFprobeBinary          = "ffprobe"
	defaultSidecarMode            = SidecarModeOverwrite
	maxPipelineWorkers            = 32
	maxRetryAttempts              = 10
	envBaseURL                    = "LRCSYNC_BASE_URL"
	envLogLevel                   = "LRCSYNC_LOG_LEVEL"
	defaultConfigFileName         = "config.toml"
	defaultProjectConfigFileName  = "lrcsync.toml"
	defaultApplicationDirName     = "lrcsync"
	defaultLogFileName            = "lrcsync.log"
	defaultLockDirName            = "locks"
	defaultSampleConfigPermission = 0o644
)

// Sidecar write modes.
const (
	SidecarModeOverwrite    = "overwrite"
	SidecarModeSkipExisting = "skip-existing"
)

var defaultExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".wav", ".dsf", ".aiff", ".aif"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir(),
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Lyrics: Lyrics{
			BaseURL:                  defaultLyricsBaseURL,
			UserAgent:                defaultLyricsUserAgent,
			RequestTimeoutSeconds:    defaultRequestTimeoutSeconds,
			DurationToleranceSeconds: defaultDurationToleranceSecs,
			MinSimilarity:            defaultMinSimilarity,
			FallbackSearch:           true,
		},
		Retry: Retry{
			MaxAttempts:      defaultRetryMaxAttempts,
			InitialBackoffMs: defaultRetryInitialBackoffMs,
			MaxBackoffMs:     defaultRetryMaxBackoffMs,
			Multiplier:       defaultRetryMultiplier,
		},
		Sidecar: Sidecar{
			Mode: defaultSidecarMode,
		},
		Pipeline: Pipeline{
			Workers: defaultPipelineWorkers,
		},
		Media: Media{
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
