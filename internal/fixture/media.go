package fixture

import (
	"context"

	"orbitgen/internal/config"
)

// Defaults for GenerateMedia.
const (
	DefaultDuration = 10.0
	DefaultFPS      = 25
)

// GenerateMedia renders the default orbit clip with four beeps into
// outputPath. Pass DefaultDuration and DefaultFPS for the reference clip.
// ORBITGEN_FFMPEG selects the ffmpeg binary.
func GenerateMedia(ctx context.Context, outputPath string, duration float64, fps int) (Result, error) {
	cfg := config.Default()
	if err := cfg.Normalize(); err != nil {
		return Result{}, err
	}
	return NewGenerator(&cfg).Generate(ctx, Request{
		Output:   outputPath,
		Duration: duration,
		FPS:      fps,
	})
}
