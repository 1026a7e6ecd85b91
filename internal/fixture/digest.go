package fixture

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pelletier/go-toml/v2"

	"orbitgen/internal/config"
)

type digestInput struct {
	DurationSeconds float64      `toml:"duration_seconds"`
	FPS             int          `toml:"fps"`
	Video           config.Video `toml:"video"`
	Audio           config.Audio `toml:"audio"`
	Codecs          []string     `toml:"codecs"`
	KeyframeSeconds float64      `toml:"keyframe_interval_seconds"`
	ExtraArgs       []string     `toml:"extra_args"`
}

// ConfigDigest fingerprints the settings that shape a fixture's content, so
// catalog entries from identical settings share a digest. Output location,
// binaries and logging are excluded.
func ConfigDigest(cfg *config.Config, duration float64, fps int) (string, error) {
	in := digestInput{
		DurationSeconds: duration,
		FPS:             fps,
		Video:           cfg.Video,
		Audio:           cfg.Audio,
		Codecs: []string{
			cfg.Encoding.VideoCodec,
			cfg.Encoding.AudioCodec,
			cfg.Encoding.PixelFormat,
			cfg.Encoding.Preset,
			cfg.Encoding.AudioBitrate,
		},
		KeyframeSeconds: cfg.Encoding.KeyframeIntervalSeconds,
		ExtraArgs:       cfg.Encoding.ExtraArgs,
	}
	// The [video] duration is superseded by the request.
	in.Video.DurationSeconds = 0
	in.Video.FPS = 0
	data, err := toml.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
