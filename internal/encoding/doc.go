// Package encoding turns synthesized frames and audio into an MP4 file.
//
// The Encoder interface is the only boundary the generator talks to. The
// FFmpeg implementation writes the audio track to a temporary WAV file,
// pipes raw rgb24 frames into ffmpeg's stdin, forces the keyframe interval,
// reports -progress updates through a callback, and surfaces the tail of
// ffmpeg's stderr when the encode fails.
package encoding
