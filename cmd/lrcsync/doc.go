// Command lrcsync fetches time-synced lyrics for a music library and writes
// them as .lrc sidecar files next to each audio file.
//
// Usage:
//
//	lrcsync fetch [flags] <dir>
//	lrcsync inspect <file>
//	lrcsync config init [--path <file>] [--overwrite]
//	lrcsync config validate
//
// Configuration is read from --config, $XDG_CONFIG_HOME/lrcsync/config.toml,
// or ./lrcsync.toml, in that order. Run "lrcsync config init" to write a
// commented sample.
package main
