package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	CodecTag     string `json:"codec_tag_string"`
	Profile      string `json:"profile"`
	PixFmt       string `json:"pix_fmt"`
	Duration     string `json:"duration"`
	BitRate      string `json:"bit_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Packet is one demuxed packet as listed by -show_entries packet.
type Packet struct {
	PTSTime string `json:"pts_time"`
	DTSTime string `json:"dts_time"`
	Flags   string `json:"flags"`
}

// Keyframe reports whether the packet starts a keyframe.
func (p Packet) Keyframe() bool {
	return strings.Contains(p.Flags, "K")
}

// PTSSeconds returns the presentation time, or NaN when ffprobe left it blank.
func (p Packet) PTSSeconds() float64 {
	if strings.TrimSpace(p.PTSTime) == "" || p.PTSTime == "N/A" {
		return math.NaN()
	}
	return parseFloat(p.PTSTime)
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	output, err := run(ctx, binary, path, "-show_format", "-show_streams")
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// Packets lists the packets of one stream ("v:0", "a:0") sorted by
// presentation time.
func Packets(ctx context.Context, binary, path, stream string) ([]Packet, error) {
	stream = strings.TrimSpace(stream)
	if stream == "" {
		stream = "v:0"
	}
	output, err := run(ctx, binary, path,
		"-select_streams", stream,
		"-show_entries", "packet=pts_time,dts_time,flags",
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe packets: %w", err)
	}
	var payload struct {
		Packets []Packet `json:"packets"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("ffprobe parse packets: %w", err)
	}
	packets := payload.Packets
	sort.SliceStable(packets, func(i, j int) bool {
		a, b := packets[i].PTSSeconds(), packets[j].PTSSeconds()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return a < b
	})
	return packets, nil
}

func run(ctx context.Context, binary, path string, args ...string) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty path")
	}
	full := append([]string{"-v", "error", "-hide_banner"}, args...)
	full = append(full, "-of", "json", "--", path)

	cmd := exec.CommandContext(ctx, binary, full...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// StreamsOfType returns the streams whose codec type matches kind.
func (r Result) StreamsOfType(kind string) []Stream {
	return lo.Filter(r.Streams, func(s Stream, _ int) bool {
		return strings.EqualFold(s.CodecType, kind)
	})
}

// FirstStream returns the first stream of the given type.
func (r Result) FirstStream(kind string) (Stream, bool) {
	return lo.Find(r.Streams, func(s Stream) bool {
		return strings.EqualFold(s.CodecType, kind)
	})
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return len(r.StreamsOfType("video"))
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return len(r.StreamsOfType("audio"))
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// FrameRate returns r_frame_rate as frames per second, or 0 when unavailable.
func (s Stream) FrameRate() float64 {
	return parseRational(s.RFrameRate)
}

// SampleRateHz returns the audio sample rate, or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate, err := strconv.Atoi(strings.TrimSpace(s.SampleRate))
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

// FrameCount returns nb_frames, or 0 when the container omits it.
func (s Stream) FrameCount() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.NbFrames))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseRational(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		v := parseFloat(num)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
