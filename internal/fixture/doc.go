// Package fixture renders the orbiting-box test clip and publishes it.
//
// Generator.Generate validates the request, takes an exclusive lock keyed by
// the absolute output path in the temp directory, encodes into a hidden
// sibling temp file and renames it over
// the output once ffmpeg succeeds. A failed or cancelled run never leaves a
// partial output behind. The published file is digested, optionally
// verified and recorded in the catalog.
//
// GenerateMedia is the library entry point for callers without a config
// file; it uses the built-in defaults with the given duration and frame rate.
package fixture
