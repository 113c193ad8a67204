// Package config loads, normalizes, and validates lrcsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LRCSYNC_BASE_URL. The Config type centralizes every knob the scanner,
// lyrics client, sidecar writer, and orchestrator need so a run is described
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
