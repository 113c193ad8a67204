// Package scanner walks a music library and lazily yields audio files.
//
// A Scanner holds the traversal policy (extension allow-list, symlink and
// hidden-entry handling). Open validates a root directory and returns a Scan
// whose Files sequence can be iterated any number of times; each iteration
// restarts the walk. Directory entries are visited in lexical order so the
// sequence is deterministic for an unchanged tree.
//
// Dot-prefixed entries are yielded unless SkipHidden is set. AppleDouble
// "._" companions of audio files are never yielded; each one is recorded as
// a Warning wrapping ErrResourceFork.
//
// Per-entry failures (permission denied, broken symlinks) never abort the
// walk. They are collected as Warnings and reported through the optional
// callback.
package scanner
