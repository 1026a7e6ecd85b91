package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"orbitgen/internal/logging"
	"orbitgen/internal/media/wavfile"
	"orbitgen/internal/services"
)

const (
	stageEncode     = "encoding"
	stderrTailBytes = 8 << 10
)

// FFmpeg encodes jobs by piping raw frames into an ffmpeg process.
type FFmpeg struct {
	binary  string
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// NewFFmpeg constructs an encoder using the given ffmpeg binary.
func NewFFmpeg(binary string, logger *slog.Logger) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{
		binary:  binary,
		logger:  logging.NewComponentLogger(logger, "encoder"),
		sampler: logging.NewProgressSampler(10),
	}
}

// Binary returns the ffmpeg executable this encoder runs.
func (f *FFmpeg) Binary() string {
	return f.binary
}

// Encode runs ffmpeg for job. The output file is written in place; callers
// that need atomic publication point job.Output at a temporary path.
func (f *FFmpeg) Encode(ctx context.Context, job Job) (err error) {
	if f == nil {
		return errors.New("ffmpeg encoder not initialized")
	}
	if err := job.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, stageEncode, "validate job", "Encode request is incomplete", err)
	}
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTransient, stageEncode, "start ffmpeg", "Encode cancelled", err)
	}
	logger := logging.WithContext(ctx, f.logger)

	wavPath, err := writeTempTrack(filepath.Dir(job.Output), job)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageEncode, "write audio", "Failed to stage audio track", err)
	}
	defer func() {
		if rmErr := os.Remove(wavPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.WarnWithContext(logger, "temporary audio track not removed", "temp_cleanup_failed",
				logging.String("path", wavPath), logging.Error(rmErr),
				logging.String(logging.FieldImpact, "a stray .wav file remains next to the output"),
			)
		}
	}()

	args := BuildArgs(job, wavPath)
	logger.Debug("starting ffmpeg",
		logging.String("binary", f.binary),
		logging.String("args", strings.Join(args, " ")),
		logging.Int("frames", job.FrameCount),
		logging.Int("gop", job.Params.GOP),
	)

	f.sampler.Reset()
	progress := &lineWriter{fn: parseProgress(job.FrameCount, job.Duration, func(p Progress) {
		if f.sampler.ShouldLog(p.Percent, "encode") {
			logger.Info("encode progress",
				logging.String(logging.FieldEventType, "encode_progress"),
				logging.Int("frame", p.Frame),
				logging.Int("total_frames", p.TotalFrames),
				logging.Float64("percent", roundPercent(p.Percent)),
				logging.String("speed", p.Speed),
			)
		}
		if job.Progress != nil {
			job.Progress(p)
		}
	})}
	stderr := newTailBuffer(stderrTailBytes)

	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Stdout = progress
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageEncode, "open stdin", "Failed to connect to ffmpeg", err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, stageEncode, "start ffmpeg", fmt.Sprintf("Failed to launch %s", f.binary), err)
	}

	writeErr := writeFrames(ctx, stdin, job)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()
	progress.Flush()

	switch {
	case ctx.Err() != nil:
		return services.Wrap(services.ErrTransient, stageEncode, "run ffmpeg", "Encode cancelled", ctx.Err())
	case waitErr != nil:
		return services.Wrap(services.ErrExternalTool, stageEncode, "run ffmpeg", ffmpegFailureMessage(stderr.String()), waitErr)
	case writeErr != nil:
		return services.Wrap(services.ErrExternalTool, stageEncode, "pipe frames", "ffmpeg stopped reading frames", writeErr)
	case closeErr != nil && !errors.Is(closeErr, os.ErrClosed):
		return services.Wrap(services.ErrExternalTool, stageEncode, "pipe frames", "Failed to close ffmpeg input", closeErr)
	}

	info, err := os.Stat(job.Output)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageEncode, "check output", "ffmpeg exited without producing output", err)
	}
	logger.Info("encode finished",
		logging.String(logging.FieldEventType, "encode_complete"),
		logging.Int("frames", job.FrameCount),
		logging.Int64("bytes", info.Size()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func writeFrames(ctx context.Context, w io.Writer, job Job) error {
	for i := 0; i < job.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := job.Frames.FrameAt(job.FrameTime(i))
		if frame.Width != job.Width || frame.Height != job.Height {
			return fmt.Errorf("frame %d is %dx%d, want %dx%d", i, frame.Width, frame.Height, job.Width, job.Height)
		}
		if _, err := w.Write(frame.Pix); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

func writeTempTrack(dir string, job Job) (string, error) {
	file, err := os.CreateTemp(dir, ".orbitgen-*.wav")
	if err != nil {
		return "", err
	}
	path := file.Name()
	if err := wavfile.Encode(file, job.Track); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func ffmpegFailureMessage(stderr string) string {
	if stderr == "" {
		return "ffmpeg failed without output"
	}
	return "ffmpeg failed: " + stderr
}

func roundPercent(p float64) float64 {
	if p < 0 {
		return p
	}
	return float64(int(p*10+0.5)) / 10
}
