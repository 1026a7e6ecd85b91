package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"orbitgen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The output lands in <base>/out and the catalog in <base>/state.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Output.Path = filepath.Join(base, "out", "orbit.mp4")
	cfgVal.Catalog.Path = filepath.Join(base, "state", "fixtures.db")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalog toggles the fixture catalog.
func WithCatalog(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Enabled = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the encoding section at them. If names is empty, ffmpeg and ffprobe
// are stubbed with scripts that exit 0.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			path := WriteScript(b.t, binDir, name, "#!/bin/sh\nexit 0\n")
			b.assign(name, path)
		}
	}
}

// WithScript installs a stub binary with the given shell body and points the
// matching encoding setting at it.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		path := WriteScript(b.t, filepath.Join(b.baseDir, "bin"), name, body)
		b.assign(name, path)
	}
}

func (b *configBuilder) assign(name, path string) {
	switch name {
	case "ffmpeg":
		b.cfg.Encoding.FFmpegBinary = path
	case "ffprobe":
		b.cfg.Encoding.FFprobeBinary = path
	}
}

// WriteScript writes an executable script into dir and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Output.Path))
}
