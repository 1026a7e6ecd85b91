package fixture_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orbitgen/internal/catalog"
	"orbitgen/internal/config"
	"orbitgen/internal/encoding"
	"orbitgen/internal/fixture"
	"orbitgen/internal/services"
	"orbitgen/internal/testsupport"
	"orbitgen/internal/verify"
)

const fakeMP4 = "not really an mp4"

// fakeEncoder records jobs and writes fakeMP4 to the job output.
type fakeEncoder struct {
	mu   sync.Mutex
	jobs []encoding.Job
	err  error
}

func (f *fakeEncoder) Encode(_ context.Context, job encoding.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	if err := os.WriteFile(job.Output, []byte(fakeMP4), 0o644); err != nil {
		return err
	}
	return f.err
}

type stubChecker struct {
	report verify.Report
	calls  int
}

func (s *stubChecker) Check(_ context.Context, path string, _ verify.Expectations) (verify.Report, error) {
	s.calls++
	s.report.Path = path
	return s.report, nil
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGeneratePublishesAndDigests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := &fakeEncoder{}
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))

	result, err := gen.Generate(context.Background(), fixture.RequestFromConfig(cfg))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != fakeMP4 {
		t.Fatalf("unexpected output %q", data)
	}
	sum := sha256.Sum256([]byte(fakeMP4))
	if result.SHA256 != hex.EncodeToString(sum[:]) || result.SizeBytes != int64(len(fakeMP4)) {
		t.Fatalf("unexpected digest %+v", result)
	}
	if result.Frames != 250 || result.GOP != 50 || result.Samples != 441000 || result.SampleRate != 44100 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.RunID == "" || result.Report != nil || result.CatalogID != "" {
		t.Fatalf("unexpected metadata %+v", result)
	}

	if len(enc.jobs) != 1 {
		t.Fatalf("expected 1 encode, got %d", len(enc.jobs))
	}
	job := enc.jobs[0]
	if filepath.Dir(job.Output) != filepath.Dir(cfg.Output.Path) || !strings.HasSuffix(job.Output, ".tmp") {
		t.Fatalf("expected hidden sibling temp path, got %s", job.Output)
	}
	if !strings.Contains(job.Output, result.RunID) {
		t.Fatalf("temp path %s should carry the run id", job.Output)
	}
	if job.Width != 640 || job.Height != 360 || job.FPS != 25 || job.FrameCount != 250 || job.Duration != 10 {
		t.Fatalf("unexpected job %+v", job)
	}
	first := job.Frames.FrameAt(job.FrameTime(0))
	wrapped := job.Frames.FrameAt(job.Duration)
	if string(first.Pix) != string(wrapped.Pix) {
		t.Fatal("frame at duration should match frame 0")
	}

	names := dirEntries(t, filepath.Dir(cfg.Output.Path))
	if len(names) != 1 || names[0] != filepath.Base(cfg.Output.Path) {
		t.Fatalf("output dir should hold only the fixture, found %v", names)
	}
}

func TestGenerateShortDurationDropsLateBursts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := &fakeEncoder{}
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))

	result, err := gen.Generate(context.Background(), fixture.Request{
		Output:   cfg.Output.Path,
		Duration: 5,
		FPS:      25,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Samples != 220500 || result.Frames != 125 {
		t.Fatalf("unexpected counts %+v", result)
	}
	track := enc.jobs[0].Track
	if len(track.Samples) != 220500 {
		t.Fatalf("track length = %d, want 220500", len(track.Samples))
	}
	burst := func(start, end float64) bool {
		for _, s := range track.Window(start, end) {
			if s.L != 0 {
				return true
			}
		}
		return false
	}
	if !burst(0, 0.2) || !burst(2.5, 2.7) {
		t.Fatal("expected bursts at 0 and 2.5 s")
	}
	if burst(0.2, 2.5) || burst(2.7, 5) {
		t.Fatal("expected silence after the 2.5 s burst")
	}
}

func TestGenerateRejectsInvalidInputWithoutFiles(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		fps      int
	}{
		{"zero duration", 0, 25},
		{"zero fps", 10, 0},
		{"negative duration", -1, 25},
		{"nan duration", math.NaN(), 25},
		{"infinite duration", math.Inf(1), 25},
		{"no frames", 0.01, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			enc := &fakeEncoder{}
			gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))
			_, err := gen.Generate(context.Background(), fixture.Request{
				Output:   cfg.Output.Path,
				Duration: tc.duration,
				FPS:      tc.fps,
			})
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if services.ExitCode(err) != services.ExitInvalidInput {
				t.Fatalf("exit code = %d", services.ExitCode(err))
			}
			if len(enc.jobs) != 0 {
				t.Fatal("encoder should not run for invalid input")
			}
			if names := dirEntries(t, filepath.Dir(cfg.Output.Path)); len(names) != 0 {
				t.Fatalf("expected no files, found %v", names)
			}
		})
	}
}

func TestGenerateRemovesPartialOutputOnEncoderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := &fakeEncoder{err: services.Wrap(services.ErrExternalTool, "encoding", "run ffmpeg", "ffmpeg failed: boom", nil)}
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))

	_, err := gen.Generate(context.Background(), fixture.RequestFromConfig(cfg))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := os.Stat(cfg.Output.Path); !os.IsNotExist(err) {
		t.Fatalf("expected no output, stat err = %v", err)
	}
	for _, name := range dirEntries(t, filepath.Dir(cfg.Output.Path)) {
		if strings.HasSuffix(name, ".tmp") {
			t.Fatalf("partial file %s left behind", name)
		}
	}
}

func TestGenerateRespectsOverwrite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.Overwrite = false
	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Output.Path, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}
	enc := &fakeEncoder{}
	_, err := fixture.NewGenerator(cfg, fixture.WithEncoder(enc)).Generate(context.Background(), fixture.RequestFromConfig(cfg))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	data, _ := os.ReadFile(cfg.Output.Path)
	if string(data) != "keep me" {
		t.Fatalf("existing output replaced: %q", data)
	}

	cfg.Output.Overwrite = true
	if _, err := fixture.NewGenerator(cfg, fixture.WithEncoder(enc)).Generate(context.Background(), fixture.RequestFromConfig(cfg)); err != nil {
		t.Fatalf("Generate with overwrite: %v", err)
	}
	data, _ = os.ReadFile(cfg.Output.Path)
	if string(data) != fakeMP4 {
		t.Fatalf("output not replaced: %q", data)
	}
}

func TestGenerateRecordsCatalogEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(true))
	store := testsupport.MustOpenCatalog(t, cfg)
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(&fakeEncoder{}), fixture.WithRecorder(store))

	result, err := gen.Generate(context.Background(), fixture.Request{Output: cfg.Output.Path, Duration: 10, FPS: 30})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.CatalogID == "" {
		t.Fatal("expected catalog id")
	}
	entries, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != result.CatalogID || got.SHA256 != result.SHA256 || got.FPS != 30 || got.FrameCount != 300 || got.ToneCount != 4 {
		t.Fatalf("unexpected entry %+v", got)
	}
	want, err := fixture.ConfigDigest(cfg, 10, 30)
	if err != nil {
		t.Fatalf("ConfigDigest: %v", err)
	}
	if got.ConfigDigest != want {
		t.Fatalf("config digest = %s, want %s", got.ConfigDigest, want)
	}
}

func TestGenerateVerificationFailureSkipsCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(true))
	store := testsupport.MustOpenCatalog(t, cfg)
	checker := &stubChecker{report: verify.Report{Results: []verify.Result{
		{Name: verify.CheckKeyframes, Passed: false, Detail: "longest run 75 frames exceeds 50"},
	}}}
	gen := fixture.NewGenerator(cfg,
		fixture.WithEncoder(&fakeEncoder{}),
		fixture.WithRecorder(store),
		fixture.WithChecker(checker),
	)

	req := fixture.RequestFromConfig(cfg)
	req.Verify = true
	result, err := gen.Generate(context.Background(), req)
	if !errors.Is(err, services.ErrVerification) {
		t.Fatalf("expected verification error, got %v", err)
	}
	if checker.calls != 1 || result.Report == nil || result.Report.Path != cfg.Output.Path {
		t.Fatalf("expected checker to run on the published output, result %+v", result)
	}
	entries, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed fixture should not be recorded, got %+v", entries)
	}
}

func TestGenerateSerializesSameOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var active, peak atomic.Int32
	enc := encoding.EncoderFunc(func(_ context.Context, job encoding.Job) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		return os.WriteFile(job.Output, []byte(fakeMP4), 0o644)
	})
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gen.Generate(context.Background(), fixture.RequestFromConfig(cfg))
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if peak.Load() != 1 {
		t.Fatalf("expected serialized encodes, peak concurrency %d", peak.Load())
	}
}

func TestGenerateCancelledWhileLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	release := make(chan struct{})
	started := make(chan struct{})
	enc := encoding.EncoderFunc(func(_ context.Context, job encoding.Job) error {
		close(started)
		<-release
		return os.WriteFile(job.Output, []byte(fakeMP4), 0o644)
	})
	gen := fixture.NewGenerator(cfg, fixture.WithEncoder(enc))

	done := make(chan error, 1)
	go func() {
		_, err := gen.Generate(context.Background(), fixture.RequestFromConfig(cfg))
		done <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := fixture.NewGenerator(cfg, fixture.WithEncoder(&fakeEncoder{})).Generate(ctx, fixture.RequestFromConfig(cfg))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected lock wait to fail transiently, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestConfigDigestTracksContentSettings(t *testing.T) {
	cfg := config.Default()
	a, err := fixture.ConfigDigest(&cfg, 10, 25)
	if err != nil {
		t.Fatalf("ConfigDigest: %v", err)
	}
	b, _ := fixture.ConfigDigest(&cfg, 10, 25)
	if a != b || len(a) != 64 {
		t.Fatalf("digest not stable: %s vs %s", a, b)
	}
	if c, _ := fixture.ConfigDigest(&cfg, 10, 30); c == a {
		t.Fatal("fps should change the digest")
	}
	moved := cfg
	moved.Output.Path = "/elsewhere/orbit.mp4"
	moved.Encoding.FFmpegBinary = "/opt/ffmpeg"
	if d, _ := fixture.ConfigDigest(&moved, 10, 25); d != a {
		t.Fatal("output path and binaries should not change the digest")
	}
	recoloured := cfg
	recoloured.Video.BoxColor = "#00ff00"
	if e, _ := fixture.ConfigDigest(&recoloured, 10, 25); e == a {
		t.Fatal("box colour should change the digest")
	}
}

func TestGenerateMediaUsesEnvironmentFFmpeg(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.WriteScript(t, dir, "ffmpeg", `#!/bin/sh
for a in "$@"; do last="$a"; done
printf '%s\n' "$@" > "`+dir+`/args.txt"
cat > /dev/null
printf 'mp4' > "$last"
`)
	t.Setenv("ORBITGEN_FFMPEG", stub)

	out := filepath.Join(dir, "content", "orbit.mp4")
	result, err := fixture.GenerateMedia(context.Background(), out, fixture.DefaultDuration, fixture.DefaultFPS)
	if err != nil {
		t.Fatalf("GenerateMedia: %v", err)
	}
	if result.Output != out || result.Frames != 250 || result.GOP != 50 {
		t.Fatalf("unexpected result %+v", result)
	}
	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(args), "-g\n50\n") || !strings.Contains(string(args), "libx264") {
		t.Fatalf("unexpected ffmpeg args:\n%s", args)
	}

	short, err := fixture.GenerateMedia(context.Background(), filepath.Join(dir, "short.mp4"), 5, 25)
	if err != nil {
		t.Fatalf("GenerateMedia with 5 s: %v", err)
	}
	if short.Frames != 125 || short.Samples != 220500 {
		t.Fatalf("unexpected short result %+v", short)
	}

	if _, err := fixture.GenerateMedia(context.Background(), filepath.Join(dir, "zero.mp4"), 0, 25); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero duration, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "zero.mp4")); !os.IsNotExist(err) {
		t.Fatal("zero-duration request must not create a file")
	}
}

var _ fixture.Recorder = (*catalog.Store)(nil)
var _ fixture.Checker = (*verify.Verifier)(nil)
