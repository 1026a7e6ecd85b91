// Command orbitgen renders the orbiting-box test clip and inspects fixtures.
//
// Subcommands:
//   - generate: render, encode and publish the MP4 fixture
//   - verify, probe: check or describe an existing file
//   - frame, audio: export a single still or the beep track
//   - schedule: print the tone schedule and orbit extents
//   - deps: report ffmpeg/ffprobe availability and output directory access
//   - history: list fixtures recorded in the catalog
//   - config init|validate: manage the TOML configuration
package main
