package encoding

import (
	"strconv"
	"strings"
)

// BuildArgs assembles the ffmpeg command line for job. Frames arrive on
// stdin as rgb24, audio comes from wavPath, and progress goes to stdout.
func BuildArgs(job Job, wavPath string) []string {
	p := job.Params
	args := []string{
		"-hide_banner", "-nostats", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", strconv.Itoa(job.Width) + "x" + strconv.Itoa(job.Height),
		"-r", strconv.Itoa(job.FPS),
		"-i", "pipe:0",
		"-i", wavPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", p.VideoCodec,
	}
	if p.PixelFormat != "" {
		args = append(args, "-pix_fmt", p.PixelFormat)
	}
	if p.Preset != "" {
		args = append(args, "-preset", p.Preset)
	}
	gop := strconv.Itoa(p.GOP)
	args = append(args, "-g", gop)
	if strings.Contains(p.VideoCodec, "264") {
		// Fixed GOP for x264: no scene-cut keyframes.
		args = append(args, "-keyint_min", gop, "-sc_threshold", "0")
	}
	args = append(args, "-c:a", p.AudioCodec)
	if p.AudioBitrate != "" {
		args = append(args, "-b:a", p.AudioBitrate)
	}
	args = append(args, "-t", strconv.FormatFloat(job.Duration, 'f', -1, 64))
	if p.FastStart {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, p.ExtraArgs...)
	args = append(args, "-f", "mp4", "-progress", "pipe:1", "-y", job.Output)
	return args
}
