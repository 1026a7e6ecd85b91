package config

import (
	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
)

const (
	defaultOutputPath              = "content/orbit.mp4"
	defaultFPS                     = 25
	defaultDurationSeconds         = 10.0
	defaultBoxColor                = "#ff0000"
	defaultBackgroundColor         = "#000000"
	defaultFFmpegBinary            = "ffmpeg"
	defaultFFprobeBinary           = "ffprobe"
	defaultVideoCodec              = "libx264"
	defaultAudioCodec              = "aac"
	defaultPixelFormat             = "yuv420p"
	defaultPreset                  = "medium"
	defaultAudioBitrate            = "128k"
	defaultKeyframeIntervalSeconds = 2.0
	defaultCatalogPath             = "~/.local/share/orbitgen/fixtures.db"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Path:      defaultOutputPath,
			Overwrite: true,
		},
		Video: Video{
			Width:           video.DefaultWidth,
			Height:          video.DefaultHeight,
			FPS:             defaultFPS,
			DurationSeconds: defaultDurationSeconds,
			BoxSize:         video.DefaultBoxSize,
			Margin:          video.DefaultMargin,
			BoxColor:        defaultBoxColor,
			BackgroundColor: defaultBackgroundColor,
		},
		Audio: Audio{
			SampleRate: audio.DefaultSampleRate,
			Tones:      defaultTones(),
		},
		Encoding: Encoding{
			FFmpegBinary:            defaultFFmpegBinary,
			FFprobeBinary:           defaultFFprobeBinary,
			VideoCodec:              defaultVideoCodec,
			AudioCodec:              defaultAudioCodec,
			PixelFormat:             defaultPixelFormat,
			Preset:                  defaultPreset,
			AudioBitrate:            defaultAudioBitrate,
			KeyframeIntervalSeconds: defaultKeyframeIntervalSeconds,
			FastStart:               true,
		},
		Catalog: Catalog{
			Enabled: true,
			Path:    defaultCatalogPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultTones() []Tone {
	schedule := audio.DefaultSchedule()
	tones := make([]Tone, 0, len(schedule))
	for _, b := range schedule {
		tones = append(tones, Tone{Frequency: b.Frequency, StartSeconds: b.Start, DurationSeconds: b.Duration})
	}
	return tones
}
