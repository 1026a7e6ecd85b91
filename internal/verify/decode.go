package verify

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// decodeMono runs ffmpeg to downmix the first audio stream of path into mono
// 32-bit float samples at rate.
func decodeMono(ctx context.Context, ffmpegBinary, path string, rate int) ([]float64, error) {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", path,
		"-map", "0:a:0",
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-f", "f32le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	raw, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return parseF32LE(raw), nil
}

func parseF32LE(raw []byte) []float64 {
	out := make([]float64, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// window returns samples covering [start, end) seconds, clipped to the buffer.
func window(samples []float64, rate int, start, end float64) []float64 {
	lo := int(math.Round(start * float64(rate)))
	hi := int(math.Round(end * float64(rate)))
	lo = max(0, min(lo, len(samples)))
	hi = max(lo, min(hi, len(samples)))
	return samples[lo:hi]
}
