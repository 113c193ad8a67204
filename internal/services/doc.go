// Package services defines shared utilities consumed by the pipeline
// components and the lyrics provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, component names, and the
//     audio file being processed for logging.
//   - Structured error markers plus the Wrap helper that let the orchestrator
//     classify per-file failures (unreadable, provider unavailable, write
//     failed) without parsing messages.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across a run.
package services
