package verify

import (
	"errors"
	"fmt"
	"math"

	"orbitgen/internal/config"
	"orbitgen/internal/synth/audio"
)

// aacFrameSamples is the number of samples in one AAC access unit.
const aacFrameSamples = 1024

// Expectations describes what a fixture should contain.
type Expectations struct {
	Width      int
	Height     int
	FPS        int
	Duration   float64
	GOP        int
	SampleRate int
	Schedule   audio.Schedule

	FFmpegBinary  string
	FFprobeBinary string
}

// FromConfig builds expectations for a fixture rendered from cfg at the given
// duration and fps. Zero values fall back to the configured ones.
func FromConfig(cfg *config.Config, duration float64, fps int) Expectations {
	if duration == 0 {
		duration = cfg.Video.DurationSeconds
	}
	if fps == 0 {
		fps = cfg.Video.FPS
	}
	return Expectations{
		Width:         cfg.Video.Width,
		Height:        cfg.Video.Height,
		FPS:           fps,
		Duration:      duration,
		GOP:           cfg.GOPFrames(fps),
		SampleRate:    cfg.Audio.SampleRate,
		Schedule:      cfg.Schedule(),
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
	}
}

// Validate reports incomplete expectations.
func (e Expectations) Validate() error {
	var errs []error
	if e.Width <= 0 || e.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be positive, got %dx%d", e.Width, e.Height))
	}
	if e.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", e.FPS))
	}
	if math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) || e.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %v", e.Duration))
	}
	if e.GOP <= 0 {
		errs = append(errs, fmt.Errorf("keyframe interval must be positive, got %d", e.GOP))
	}
	if e.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", e.SampleRate))
	}
	return errors.Join(errs...)
}

// FrameCount is the number of video frames the fixture should carry.
func (e Expectations) FrameCount() int {
	return int(math.Round(e.Duration * float64(e.FPS)))
}

// Tolerance is the timing slack allowed around tone bursts: one video frame or
// one AAC access unit, whichever is longer.
func (e Expectations) Tolerance() float64 {
	frame := 1 / float64(e.FPS)
	block := float64(aacFrameSamples) / float64(e.SampleRate)
	return math.Max(frame, block)
}
