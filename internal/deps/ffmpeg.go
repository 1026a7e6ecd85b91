package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// MediaRequirements lists the ffmpeg and ffprobe binaries used for encoding
// and verification.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Required for encoding"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Required for verification and probing"},
	}
}

// Version runs `<binary> -version` and returns the first line of its output.
func Version(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// CheckEncoders reports whether ffmpeg was built with each named encoder.
func CheckEncoders(ctx context.Context, ffmpegBinary string, codecs ...string) []Status {
	results := make([]Status, 0, len(codecs))
	available, err := listEncoders(ctx, ffmpegBinary)
	for _, codec := range codecs {
		status := Status{Requirement: Requirement{
			Name:        "Encoder " + codec,
			Command:     ffmpegBinary,
			Description: "Required codec in the ffmpeg build",
		}}
		switch {
		case err != nil:
			status.Detail = err.Error()
		case available[codec]:
			status.Available = true
		default:
			status.Detail = fmt.Sprintf("ffmpeg has no %q encoder", codec)
		}
		results = append(results, status)
	}
	return results
}

// listEncoders parses `ffmpeg -hide_banner -encoders`. Encoder lines start
// with a six-character capability column followed by the encoder name.
func listEncoders(ctx context.Context, ffmpegBinary string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, ffmpegBinary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "------") {
			listing = true
			continue
		}
		if !listing {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && len(fields[0]) == 6 {
			encoders[fields[1]] = true
		}
	}
	return encoders, scanner.Err()
}
