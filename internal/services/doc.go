// Package services defines shared utilities consumed by the generation
// pipeline and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and output paths for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
