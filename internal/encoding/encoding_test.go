package encoding_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"orbitgen/internal/encoding"
	"orbitgen/internal/media/wavfile"
	"orbitgen/internal/services"
	"orbitgen/internal/synth/audio"
	"orbitgen/internal/synth/video"
	"orbitgen/internal/testsupport"
)

const recordingFFmpeg = `#!/bin/sh
prev=""
inputs=0
for a in "$@"; do
  if [ "$prev" = "-i" ]; then
    inputs=$((inputs+1))
    if [ $inputs -eq 2 ]; then wav="$a"; fi
  fi
  prev="$a"
  last="$a"
done
cp "$wav" "$STUB_DIR/track.wav"
cat > "$STUB_DIR/frames.raw"
printf '%s\n' "$@" > "$STUB_DIR/args.txt"
printf 'frame=1\nout_time_us=333333\nspeed=1.0x\nprogress=continue\n'
printf 'frame=3\nout_time_us=1000000\nspeed=1.1x\nprogress=end\n'
printf 'mp4' > "$last"
`

func smallJob(t *testing.T, output string) (encoding.Job, *video.Orbit) {
	t.Helper()
	geometry := video.Geometry{Width: 32, Height: 18, BoxSize: 4, Margin: 2, Box: video.Red, Background: video.Black}
	orbit, err := video.NewOrbit(geometry, 1)
	if err != nil {
		t.Fatalf("NewOrbit: %v", err)
	}
	track, err := audio.Schedule{{Frequency: 440, Start: 0, Duration: 0.2}}.Render(1, 8000)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return encoding.Job{
		Output:     output,
		Frames:     orbit,
		Width:      geometry.Width,
		Height:     geometry.Height,
		FPS:        3,
		FrameCount: 3,
		Duration:   1,
		Track:      track,
		Params:     encoding.DefaultParams(3),
	}, orbit
}

func TestBuildArgsForcesGOPAndDuration(t *testing.T) {
	job, _ := smallJob(t, "/tmp/out.mp4")
	job.FPS = 25
	job.Width, job.Height = 640, 360
	job.Duration = 10
	job.Params = encoding.DefaultParams(25)
	job.Params.ExtraArgs = []string{"-tune", "zerolatency"}

	args := encoding.BuildArgs(job, "/tmp/track.wav")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo -pix_fmt rgb24 -s 640x360 -r 25 -i pipe:0 -i /tmp/track.wav",
		"-map 0:v:0 -map 1:a:0",
		"-c:v libx264 -pix_fmt yuv420p",
		"-g 50 -keyint_min 50 -sc_threshold 0",
		"-c:a aac",
		"-t 10",
		"-movflags +faststart",
		"-tune zerolatency",
		"-progress pipe:1",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Fatalf("expected output last, got %q", args[len(args)-1])
	}
}

func TestFFmpegEncodePipesFramesAndAudio(t *testing.T) {
	stubDir := t.TempDir()
	t.Setenv("STUB_DIR", stubDir)
	binary := testsupport.WriteScript(t, stubDir, "ffmpeg", recordingFFmpeg)

	outDir := t.TempDir()
	output := filepath.Join(outDir, "clip.mp4")
	job, orbit := smallJob(t, output)
	var updates []encoding.Progress
	job.Progress = func(p encoding.Progress) { updates = append(updates, p) }

	if err := encoding.NewFFmpeg(binary, nil).Encode(context.Background(), job); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(stubDir, "frames.raw"))
	if err != nil {
		t.Fatalf("read frames: %v", err)
	}
	frameSize := 32 * 18 * video.BytesPerPixel
	if len(raw) != 3*frameSize {
		t.Fatalf("piped %d bytes, want %d", len(raw), 3*frameSize)
	}
	for i := 0; i < 3; i++ {
		want := orbit.FrameAt(video.FrameTime(i, 3)).Pix
		if !bytes.Equal(raw[i*frameSize:(i+1)*frameSize], want) {
			t.Fatalf("frame %d bytes differ from FrameAt", i)
		}
	}

	track, err := wavfile.Read(filepath.Join(stubDir, "track.wav"))
	if err != nil {
		t.Fatalf("read staged wav: %v", err)
	}
	if track.SampleRate != 8000 || len(track.Samples) != len(job.Track.Samples) {
		t.Fatalf("staged wav has rate %d and %d samples", track.SampleRate, len(track.Samples))
	}

	if len(updates) != 2 || updates[0].Frame != 1 || !updates[1].Done || updates[1].Percent != 100 {
		t.Fatalf("unexpected progress updates %+v", updates)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "clip.mp4" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only clip.mp4 to remain, got %v", names)
	}

	args, err := os.ReadFile(filepath.Join(stubDir, "args.txt"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(args)), "\n")
	if idx := slices.Index(lines, "-g"); idx < 0 || lines[idx+1] != "6" {
		t.Fatalf("expected -g 6 for 3 fps, got %v", lines)
	}
}

func TestFFmpegEncodeSurfacesStderr(t *testing.T) {
	stubDir := t.TempDir()
	binary := testsupport.WriteScript(t, stubDir, "ffmpeg", "#!/bin/sh\necho \"Unknown encoder 'libx264'\" >&2\nexit 1\n")

	outDir := t.TempDir()
	job, _ := smallJob(t, filepath.Join(outDir, "clip.mp4"))
	err := encoding.NewFFmpeg(binary, nil).Encode(context.Background(), job)
	if err == nil {
		t.Fatal("expected encode failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder 'libx264'") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, found %d", len(entries))
	}
}

func TestFFmpegEncodeMissingOutput(t *testing.T) {
	stubDir := t.TempDir()
	binary := testsupport.WriteScript(t, stubDir, "ffmpeg", "#!/bin/sh\ncat > /dev/null\nexit 0\n")

	job, _ := smallJob(t, filepath.Join(t.TempDir(), "clip.mp4"))
	err := encoding.NewFFmpeg(binary, nil).Encode(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for missing output, got %v", err)
	}
}

func TestFFmpegEncodeRejectsInvalidJob(t *testing.T) {
	err := encoding.NewFFmpeg("ffmpeg", nil).Encode(context.Background(), encoding.Job{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFFmpegEncodeHonoursCancelledContext(t *testing.T) {
	job, _ := smallJob(t, filepath.Join(t.TempDir(), "clip.mp4"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := encoding.NewFFmpeg("/nonexistent/ffmpeg", nil).Encode(ctx, job)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
