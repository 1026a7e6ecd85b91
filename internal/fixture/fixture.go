package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"orbitgen/internal/catalog"
	"orbitgen/internal/config"
	"orbitgen/internal/encoding"
	"orbitgen/internal/fileutil"
	"orbitgen/internal/logging"
	"orbitgen/internal/services"
	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
	"orbitgen/internal/verify"
)

const (
	stageGenerate = "generation"
	lockRetry     = 100 * time.Millisecond
)

// Checker verifies a published fixture.
type Checker interface {
	Check(ctx context.Context, path string, exp verify.Expectations) (verify.Report, error)
}

// Recorder stores a catalog entry for a published fixture.
type Recorder interface {
	Record(ctx context.Context, entry catalog.Entry) (catalog.Entry, error)
}

// Request selects what to render. Zero Duration or FPS is rejected; use
// RequestFromConfig to start from the configured values.
type Request struct {
	Output   string
	Duration float64
	FPS      int
	// Verify runs the verifier after publishing, in addition to
	// output.verify in the config.
	Verify bool
	// Progress receives encoder progress updates.
	Progress func(encoding.Progress)
}

// RequestFromConfig returns a request for the configured output, duration and
// frame rate.
func RequestFromConfig(cfg *config.Config) Request {
	return Request{
		Output:   cfg.Output.Path,
		Duration: cfg.Video.DurationSeconds,
		FPS:      cfg.Video.FPS,
		Verify:   cfg.Output.Verify,
	}
}

// Result describes a published fixture.
type Result struct {
	RunID      string
	Output     string
	Duration   float64
	FPS        int
	Frames     int
	GOP        int
	SampleRate int
	Samples    int
	SHA256     string
	SizeBytes  int64
	Elapsed    time.Duration
	CatalogID  string
	Report     *verify.Report
}

// Generator renders fixtures from a config.
type Generator struct {
	cfg      *config.Config
	encoder  encoding.Encoder
	checker  Checker
	recorder Recorder
	logger   *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithEncoder replaces the ffmpeg encoder.
func WithEncoder(enc encoding.Encoder) Option {
	return func(g *Generator) { g.encoder = enc }
}

// WithChecker replaces the verifier.
func WithChecker(c Checker) Option {
	return func(g *Generator) { g.checker = c }
}

// WithRecorder records published fixtures, typically into a *catalog.Store.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator constructs a generator. Without WithEncoder it encodes through
// the configured ffmpeg binary.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	base := g.logger
	g.logger = logging.NewComponentLogger(base, "fixture")
	if g.encoder == nil && cfg != nil {
		g.encoder = encoding.NewFFmpeg(cfg.FFmpegBinary(), base)
	}
	if g.checker == nil {
		g.checker = verify.New(base)
	}
	return g
}

type plan struct {
	output   string
	duration float64
	fps      int
	frames   int
	orbit    *video.Orbit
	track    audio.Track
	params   encoding.Params
	verify   bool
}

func (g *Generator) plan(req Request) (plan, error) {
	invalid := func(op string, err error) error {
		return services.Wrap(services.ErrValidation, stageGenerate, op, "Invalid generation request", err)
	}
	if g == nil || g.cfg == nil {
		return plan{}, services.Wrap(services.ErrConfiguration, stageGenerate, "init", "generator has no config", nil)
	}
	output := strings.TrimSpace(req.Output)
	if output == "" {
		output = g.cfg.Output.Path
	}
	if output == "" {
		return plan{}, invalid("output", errors.New("output path is required"))
	}
	if math.IsNaN(req.Duration) || math.IsInf(req.Duration, 0) || req.Duration <= 0 {
		return plan{}, invalid("duration", fmt.Errorf("duration must be a positive number of seconds, got %v", req.Duration))
	}
	if req.FPS <= 0 {
		return plan{}, invalid("fps", fmt.Errorf("fps must be positive, got %d", req.FPS))
	}
	frames := video.FrameCount(req.Duration, req.FPS)
	if frames == 0 {
		return plan{}, invalid("fps", fmt.Errorf("%v s at %d fps yields no frames", req.Duration, req.FPS))
	}
	geometry, err := g.cfg.Geometry()
	if err != nil {
		return plan{}, invalid("geometry", err)
	}
	orbit, err := video.NewOrbit(geometry, req.Duration)
	if err != nil {
		return plan{}, invalid("geometry", err)
	}
	track, err := g.cfg.Schedule().Render(req.Duration, g.cfg.Audio.SampleRate)
	if err != nil {
		return plan{}, invalid("tones", err)
	}
	return plan{
		output:   output,
		duration: req.Duration,
		fps:      req.FPS,
		frames:   frames,
		orbit:    orbit,
		track:    track,
		params:   encodingParams(g.cfg, req.FPS),
		verify:   req.Verify || g.cfg.Output.Verify,
	}, nil
}

// Generate renders, encodes and publishes one fixture. Inputs are validated
// before anything touches the filesystem.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	p, err := g.plan(req)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithStage(ctx, stageGenerate)
	ctx = services.WithOutput(ctx, p.output)
	logger := logging.WithContext(ctx, g.logger)

	if err := os.MkdirAll(filepath.Dir(p.output), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, stageGenerate, "create output directory", filepath.Dir(p.output), err)
	}

	lock := flock.New(lockPath(p.output))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return Result{}, services.Wrap(services.ErrTransient, stageGenerate, "lock output", "Another run holds "+lock.Path(), err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("output lock release failed", logging.Error(err))
		}
	}()

	if !g.cfg.Output.Overwrite {
		if _, err := os.Stat(p.output); err == nil {
			return Result{}, services.Wrap(services.ErrValidation, stageGenerate, "check output",
				"Output exists and output.overwrite is false", errors.New(p.output))
		}
	}

	logger.Info("generating fixture",
		logging.String(logging.FieldEventType, "generate_start"),
		logging.Float64("duration_seconds", p.duration),
		logging.Int("fps", p.fps),
		logging.Int("frames", p.frames),
		logging.Int("gop", p.params.GOP),
		logging.Int("tones", len(g.cfg.Schedule().Within(p.duration))),
	)

	started := time.Now()
	tmp := tempPath(p.output, runID)
	job := encoding.Job{
		Output:     tmp,
		Frames:     p.orbit,
		Width:      p.orbit.Geometry().Width,
		Height:     p.orbit.Geometry().Height,
		FPS:        p.fps,
		FrameCount: p.frames,
		Duration:   p.duration,
		Track:      p.track,
		Params:     p.params,
		Progress:   req.Progress,
	}
	if err := g.encoder.Encode(ctx, job); err != nil {
		removeQuietly(logger, tmp)
		return Result{}, err
	}
	if err := fileutil.Publish(tmp, p.output); err != nil {
		removeQuietly(logger, tmp)
		return Result{}, services.Wrap(services.ErrTransient, stageGenerate, "publish", "Failed to move fixture into place", err)
	}

	sum, err := fileutil.Digest(p.output)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, stageGenerate, "digest", "Failed to hash fixture", err)
	}
	result := Result{
		RunID:      runID,
		Output:     p.output,
		Duration:   p.duration,
		FPS:        p.fps,
		Frames:     p.frames,
		GOP:        p.params.GOP,
		SampleRate: p.track.SampleRate,
		Samples:    len(p.track.Samples),
		SHA256:     sum.SHA256,
		SizeBytes:  sum.Size,
	}

	if p.verify {
		report, err := g.checker.Check(ctx, p.output, verify.FromConfig(g.cfg, p.duration, p.fps))
		if err != nil {
			return result, err
		}
		result.Report = &report
		if err := report.Err(); err != nil {
			result.Elapsed = time.Since(started)
			return result, err
		}
	}

	if g.recorder != nil {
		entry, err := g.recorder.Record(ctx, g.catalogEntry(result))
		if err != nil {
			logging.WarnWithContext(logger, "fixture not recorded in catalog", "catalog_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history will not list this fixture"),
			)
		} else {
			result.CatalogID = entry.ID
		}
	}

	result.Elapsed = time.Since(started)
	logger.Info("fixture generated",
		logging.String(logging.FieldEventType, "generate_complete"),
		logging.String("sha256", result.SHA256),
		logging.Int64("bytes", result.SizeBytes),
		logging.Duration("elapsed", result.Elapsed),
		logging.Bool("verified", result.Report != nil),
	)
	return result, nil
}

func (g *Generator) catalogEntry(r Result) catalog.Entry {
	digest, _ := ConfigDigest(g.cfg, r.Duration, r.FPS)
	return catalog.Entry{
		OutputPath:      r.Output,
		SHA256:          r.SHA256,
		SizeBytes:       r.SizeBytes,
		DurationSeconds: r.Duration,
		FPS:             r.FPS,
		FrameCount:      r.Frames,
		SampleRate:      r.SampleRate,
		ToneCount:       len(g.cfg.Audio.Tones),
		ConfigDigest:    digest,
	}
}

// tempPath is the hidden sibling the encoder writes before publication.
func tempPath(output, runID string) string {
	return filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+"."+runID+".tmp")
}

func removeQuietly(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logger, "temporary fixture not removed", "temp_cleanup_failed",
			logging.String("path", path), logging.Error(err),
			logging.String(logging.FieldImpact, "a hidden .tmp file remains next to the output"),
		)
	}
}
