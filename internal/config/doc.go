// Package config loads, normalizes, and validates chanmap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHANMAP_STATE_DIR and XDG_STATE_HOME. The Config type centralizes the knobs
// the converter and CLI need: where channel maps are written, how metadata
// is parsed, whether conversions are recorded, and how logs are emitted.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
