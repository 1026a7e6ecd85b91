package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
)

//go:embed sample_config.toml
var sampleConfig string

// Output controls where the generated fixture lands.
type Output struct {
	Path      string `toml:"path"`
	Overwrite bool   `toml:"overwrite"`
	Verify    bool   `toml:"verify"`
}

// Video describes the synthesized picture.
type Video struct {
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	FPS             int     `toml:"fps"`
	DurationSeconds float64 `toml:"duration_seconds"`
	BoxSize         int     `toml:"box_size"`
	Margin          int     `toml:"margin"`
	BoxColor        string  `toml:"box_color"`
	BackgroundColor string  `toml:"background_color"`
}

// Tone is one scheduled beep.
type Tone struct {
	Frequency       float64 `toml:"frequency"`
	StartSeconds    float64 `toml:"start_seconds"`
	DurationSeconds float64 `toml:"duration_seconds"`
}

// Audio describes the synthesized soundtrack.
type Audio struct {
	SampleRate int    `toml:"sample_rate"`
	Tones      []Tone `toml:"tones"`
}

// Encoding contains the ffmpeg invocation settings.
type Encoding struct {
	FFmpegBinary            string   `toml:"ffmpeg_binary"`
	FFprobeBinary           string   `toml:"ffprobe_binary"`
	VideoCodec              string   `toml:"video_codec"`
	AudioCodec              string   `toml:"audio_codec"`
	PixelFormat             string   `toml:"pixel_format"`
	Preset                  string   `toml:"preset"`
	AudioBitrate            string   `toml:"audio_bitrate"`
	KeyframeIntervalSeconds float64  `toml:"keyframe_interval_seconds"`
	FastStart               bool     `toml:"faststart"`
	ExtraArgs               []string `toml:"extra_args"`
}

// Catalog controls the SQLite record of generated fixtures.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for orbitgen.
//
// Configuration sections by subsystem:
//   - Output: destination path, overwrite policy, post-encode verification
//   - Video: frame geometry, colours, frame rate and duration
//   - Audio: sample rate and the tone schedule
//   - Encoding: ffmpeg/ffprobe binaries, codecs and GOP length
//   - Catalog: SQLite history of generated fixtures
//   - Logging: log format, level and optional file sink
type Config struct {
	Output   Output   `toml:"output"`
	Video    Video    `toml:"video"`
	Audio    Audio    `toml:"audio"`
	Encoding Encoding `toml:"encoding"`
	Catalog  Catalog  `toml:"catalog"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/orbitgen/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	// Array tables decode index by index; start empty so a shorter
	// [[audio.tones]] list does not inherit trailing defaults.
	cfg.Audio.Tones = nil

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("orbitgen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directory, plus the catalog and log
// directories when those sinks are enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Output.Path)}
	if c.Catalog.Enabled && strings.TrimSpace(c.Catalog.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Catalog.Path))
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encoding and audio decode.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoding.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Encoding.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// Geometry converts the [video] section into frame geometry.
func (c *Config) Geometry() (video.Geometry, error) {
	box, err := video.ParseHexColor(c.Video.BoxColor)
	if err != nil {
		return video.Geometry{}, fmt.Errorf("video.box_color: %w", err)
	}
	background, err := video.ParseHexColor(c.Video.BackgroundColor)
	if err != nil {
		return video.Geometry{}, fmt.Errorf("video.background_color: %w", err)
	}
	return video.Geometry{
		Width:      c.Video.Width,
		Height:     c.Video.Height,
		BoxSize:    c.Video.BoxSize,
		Margin:     c.Video.Margin,
		Box:        box,
		Background: background,
	}, nil
}

// Schedule converts the [[audio.tones]] entries into a beep schedule.
func (c *Config) Schedule() audio.Schedule {
	schedule := make(audio.Schedule, 0, len(c.Audio.Tones))
	for _, tone := range c.Audio.Tones {
		schedule = append(schedule, audio.Beep{
			Frequency: tone.Frequency,
			Start:     tone.StartSeconds,
			Duration:  tone.DurationSeconds,
		})
	}
	return schedule
}

// GOPFrames returns the keyframe interval in frames for the configured rate.
func (c *Config) GOPFrames(fps int) int {
	gop := int(c.Encoding.KeyframeIntervalSeconds*float64(fps) + 0.5)
	if gop < 1 {
		return 1
	}
	return gop
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
