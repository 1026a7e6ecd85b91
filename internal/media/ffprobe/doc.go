// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Packet: per-packet timing and keyframe flags
//
// Entry points:
//   - Inspect: executes ffprobe -show_format -show_streams
//   - Packets: lists one stream's packets in presentation order
package ffprobe
