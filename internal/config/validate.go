package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if !finitePositive(c.Video.DurationSeconds) {
		return errors.New("video.duration_seconds must be a positive number")
	}
	geometry, err := c.Geometry()
	if err != nil {
		return err
	}
	if err := geometry.Validate(); err != nil {
		return fmt.Errorf("video: %w", err)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if len(c.Audio.Tones) == 0 {
		return errors.New("audio.tones must contain at least one tone")
	}
	if err := c.Schedule().Validate(c.Audio.SampleRate); err != nil {
		return fmt.Errorf("audio.tones: %w", err)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if !finitePositive(c.Encoding.KeyframeIntervalSeconds) {
		return errors.New("encoding.keyframe_interval_seconds must be a positive number")
	}
	if c.Encoding.PixelFormat == "yuv420p" && (c.Video.Width%2 != 0 || c.Video.Height%2 != 0) {
		return errors.New("video.width and video.height must be even for encoding.pixel_format yuv420p")
	}
	for _, arg := range c.Encoding.ExtraArgs {
		switch arg {
		case "-i", "-g", "-y", "-n", "-progress":
			return fmt.Errorf("encoding.extra_args must not override %s", arg)
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Enabled && strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path must be set when catalog.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
