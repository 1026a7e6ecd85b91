// Package config loads, normalizes, and validates orbitgen configuration data.
//
// It supplies repository defaults that reproduce the reference fixture
// (640x360, 25 fps, 10 s, four beeps), expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ORBITGEN_FFMPEG. The Config type centralizes every knob the generator and
// CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
