package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize applies the cleanup, defaults and environment overrides Load
// performs. Use it on configs built in code.
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalize() error {
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeAudio()
	c.normalizeEncoding()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeOutput() error {
	var err error
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	if c.Output.Path == "" {
		c.Output.Path = defaultOutputPath
	}
	if c.Output.Path, err = expandPath(c.Output.Path); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.BoxColor = strings.ToLower(strings.TrimSpace(c.Video.BoxColor))
	if c.Video.BoxColor == "" {
		c.Video.BoxColor = defaultBoxColor
	}
	c.Video.BackgroundColor = strings.ToLower(strings.TrimSpace(c.Video.BackgroundColor))
	if c.Video.BackgroundColor == "" {
		c.Video.BackgroundColor = defaultBackgroundColor
	}
}

func (c *Config) normalizeAudio() {
	if len(c.Audio.Tones) == 0 {
		c.Audio.Tones = defaultTones()
	}
}

func (c *Config) normalizeEncoding() {
	c.Encoding.FFmpegBinary = strings.TrimSpace(c.Encoding.FFmpegBinary)
	if value, ok := os.LookupEnv("ORBITGEN_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Encoding.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Encoding.FFmpegBinary == "" {
		c.Encoding.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoding.FFprobeBinary = strings.TrimSpace(c.Encoding.FFprobeBinary)
	if value, ok := os.LookupEnv("ORBITGEN_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Encoding.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Encoding.FFprobeBinary == "" {
		c.Encoding.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoding.VideoCodec = strings.TrimSpace(c.Encoding.VideoCodec)
	if c.Encoding.VideoCodec == "" {
		c.Encoding.VideoCodec = defaultVideoCodec
	}
	c.Encoding.AudioCodec = strings.TrimSpace(c.Encoding.AudioCodec)
	if c.Encoding.AudioCodec == "" {
		c.Encoding.AudioCodec = defaultAudioCodec
	}
	c.Encoding.PixelFormat = strings.ToLower(strings.TrimSpace(c.Encoding.PixelFormat))
	if c.Encoding.PixelFormat == "" {
		c.Encoding.PixelFormat = defaultPixelFormat
	}
	c.Encoding.Preset = strings.ToLower(strings.TrimSpace(c.Encoding.Preset))
	c.Encoding.AudioBitrate = strings.TrimSpace(c.Encoding.AudioBitrate)
	args := make([]string, 0, len(c.Encoding.ExtraArgs))
	for _, arg := range c.Encoding.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Encoding.ExtraArgs = args
}

func (c *Config) normalizeCatalog() error {
	var err error
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
