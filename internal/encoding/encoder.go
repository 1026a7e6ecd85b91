package encoding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
)

// FrameSource renders the frame shown at a timestamp in seconds.
type FrameSource interface {
	FrameAt(t float64) video.Frame
}

// Params selects codecs and container options.
type Params struct {
	VideoCodec   string
	AudioCodec   string
	PixelFormat  string
	Preset       string
	AudioBitrate string
	// GOP is the maximum distance between keyframes, in frames.
	GOP       int
	FastStart bool
	ExtraArgs []string
}

// DefaultParams returns H.264/AAC settings with a keyframe every two seconds.
func DefaultParams(fps int) Params {
	return Params{
		VideoCodec:   "libx264",
		AudioCodec:   "aac",
		PixelFormat:  "yuv420p",
		Preset:       "medium",
		AudioBitrate: "128k",
		GOP:          fps * 2,
		FastStart:    true,
	}
}

// Job is one encode request.
type Job struct {
	// Output is the file ffmpeg writes. Callers publish it themselves.
	Output     string
	Frames     FrameSource
	Width      int
	Height     int
	FPS        int
	FrameCount int
	Duration   float64
	Track      audio.Track
	Params     Params
	// Progress, when set, receives parsed -progress updates.
	Progress func(Progress)
}

// FrameTime returns the timestamp of frame i.
func (j Job) FrameTime(i int) float64 {
	return video.FrameTime(i, j.FPS)
}

// Validate checks the job can be handed to an encoder.
func (j Job) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Output) == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if j.Frames == nil {
		errs = append(errs, errors.New("frame source is required"))
	}
	if j.Width <= 0 || j.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be positive, got %dx%d", j.Width, j.Height))
	}
	if j.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", j.FPS))
	}
	if j.FrameCount <= 0 {
		errs = append(errs, fmt.Errorf("frame count must be positive, got %d", j.FrameCount))
	}
	if math.IsNaN(j.Duration) || math.IsInf(j.Duration, 0) || j.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %v", j.Duration))
	}
	if j.Track.SampleRate <= 0 || len(j.Track.Samples) == 0 {
		errs = append(errs, errors.New("audio track is empty"))
	}
	if j.Params.GOP <= 0 {
		errs = append(errs, fmt.Errorf("keyframe interval must be positive, got %d", j.Params.GOP))
	}
	return errors.Join(errs...)
}

// Encoder produces the file described by a job.
type Encoder interface {
	Encode(ctx context.Context, job Job) error
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(ctx context.Context, job Job) error

// Encode calls f.
func (f EncoderFunc) Encode(ctx context.Context, job Job) error {
	return f(ctx, job)
}
