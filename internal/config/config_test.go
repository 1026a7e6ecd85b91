package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"orbitgen/internal/config"
	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "orbitgen", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Output.Path) || filepath.Base(cfg.Output.Path) != "orbit.mp4" {
		t.Fatalf("unexpected output path %q", cfg.Output.Path)
	}
	wantCatalog := filepath.Join(tempHome, ".local", "share", "orbitgen", "fixtures.db")
	if cfg.Catalog.Path != wantCatalog {
		t.Fatalf("unexpected catalog path: got %q want %q", cfg.Catalog.Path, wantCatalog)
	}
	if cfg.Video.Width != 640 || cfg.Video.Height != 360 || cfg.Video.FPS != 25 || cfg.Video.DurationSeconds != 10 {
		t.Fatalf("unexpected video defaults %+v", cfg.Video)
	}
	if cfg.Audio.SampleRate != 44100 || len(cfg.Audio.Tones) != 4 {
		t.Fatalf("unexpected audio defaults %+v", cfg.Audio)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if got := cfg.GOPFrames(cfg.Video.FPS); got != 50 {
		t.Fatalf("expected GOP 50 at 25 fps, got %d", got)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestDefaultsReproduceReferenceFixture(t *testing.T) {
	cfg := config.Default()
	geometry, err := cfg.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geometry != video.DefaultGeometry() {
		t.Fatalf("geometry %+v differs from %+v", geometry, video.DefaultGeometry())
	}
	schedule := cfg.Schedule()
	want := audio.DefaultSchedule()
	if len(schedule) != len(want) {
		t.Fatalf("schedule length %d, want %d", len(schedule), len(want))
	}
	for i := range want {
		if schedule[i] != want[i] {
			t.Fatalf("tone %d = %+v, want %+v", i, schedule[i], want[i])
		}
	}
}

func TestLoadCustomFileReplacesToneList(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	configPath := filepath.Join(tempDir, "orbitgen.toml")
	contents := `
[output]
path = "` + filepath.Join(tempDir, "out", "clip.mp4") + `"

[video]
fps = 30
duration_seconds = 4.0
box_color = " #00FF00 "

[[audio.tones]]
frequency = 1000.0
start_seconds = 1.0
duration_seconds = 0.5

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Video.FPS != 30 || cfg.Video.DurationSeconds != 4 {
		t.Fatalf("unexpected video section %+v", cfg.Video)
	}
	if cfg.Video.Width != 640 {
		t.Fatalf("expected width default to survive partial config, got %d", cfg.Video.Width)
	}
	if cfg.Video.BoxColor != "#00ff00" {
		t.Fatalf("expected normalized colour, got %q", cfg.Video.BoxColor)
	}
	if len(cfg.Audio.Tones) != 1 || cfg.Audio.Tones[0].Frequency != 1000 {
		t.Fatalf("expected single custom tone, got %+v", cfg.Audio.Tones)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if got := cfg.GOPFrames(cfg.Video.FPS); got != 60 {
		t.Fatalf("expected GOP 60, got %d", got)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(filepath.Join(tempDir, "out")); err != nil || !info.IsDir() {
		t.Fatalf("expected output directory to exist: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "orbitgen.toml")
	if err := os.WriteFile(configPath, []byte("[video]\nwidht = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestEnvVarOverridesConfigFileForBinaries(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	configPath := filepath.Join(tempDir, "orbitgen.toml")

	type payload struct {
		Encoding struct {
			FFmpegBinary  string `toml:"ffmpeg_binary"`
			FFprobeBinary string `toml:"ffprobe_binary"`
		} `toml:"encoding"`
	}
	custom := payload{}
	custom.Encoding.FFmpegBinary = "/opt/file/ffmpeg"
	custom.Encoding.FFprobeBinary = "/opt/file/ffprobe"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("ORBITGEN_FFMPEG", "/opt/env/ffmpeg")
	t.Setenv("ORBITGEN_FFPROBE", " ")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/env/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/opt/file/ffprobe" {
		t.Errorf("expected blank env to keep file value, got %q", cfg.FFprobeBinary())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[[audio.tones]]") {
		t.Fatalf("sample config missing tone table: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Audio.Tones) != 4 || cfg.Encoding.KeyframeIntervalSeconds != 2 {
		t.Fatalf("sample does not mirror defaults: %+v %+v", cfg.Audio, cfg.Encoding)
	}

	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero fps", func(c *config.Config) { c.Video.FPS = 0 }},
		{"zero duration", func(c *config.Config) { c.Video.DurationSeconds = 0 }},
		{"odd width", func(c *config.Config) { c.Video.Width = 641 }},
		{"box too large", func(c *config.Config) { c.Video.BoxSize = 400 }},
		{"bad colour", func(c *config.Config) { c.Video.BoxColor = "red" }},
		{"zero sample rate", func(c *config.Config) { c.Audio.SampleRate = 0 }},
		{"no tones", func(c *config.Config) { c.Audio.Tones = nil }},
		{"negative tone start", func(c *config.Config) { c.Audio.Tones[1].StartSeconds = -1 }},
		{"tone above nyquist", func(c *config.Config) { c.Audio.Tones[0].Frequency = 30000 }},
		{"zero keyframe interval", func(c *config.Config) { c.Encoding.KeyframeIntervalSeconds = 0 }},
		{"extra args override gop", func(c *config.Config) { c.Encoding.ExtraArgs = []string{"-g", "10"} }},
		{"catalog without path", func(c *config.Config) { c.Catalog.Path = "" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Video.DurationSeconds = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("a duration shorter than the tone schedule should validate: %v", err)
	}
}
