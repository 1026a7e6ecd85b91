package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/samber/lo"

	"orbitgen/internal/logging"
	"orbitgen/internal/media/ffprobe"
	"orbitgen/internal/services"
	"orbitgen/internal/synth/audio"
)

const (
	stageVerify = "verification"

	// MinTonePower is the Goertzel power a scheduled tone must reach. A
	// full-scale sine measures about 0.25.
	MinTonePower = 0.05
	// MaxSilenceRMS is the loudest a gap between bursts may be.
	MaxSilenceRMS = 0.01
)

// Verifier runs checks with a logger attached.
type Verifier struct {
	logger *slog.Logger
}

// New constructs a verifier.
func New(logger *slog.Logger) *Verifier {
	return &Verifier{logger: logging.NewComponentLogger(logger, "verifier")}
}

// Check verifies path with a silent logger.
func Check(ctx context.Context, path string, exp Expectations) (Report, error) {
	return New(nil).Check(ctx, path, exp)
}

// Check inspects path and compares it with exp. The returned error covers
// tool failures only; failed checks are reported through Report.Err.
func (v *Verifier) Check(ctx context.Context, path string, exp Expectations) (Report, error) {
	report := Report{Path: path}
	if err := exp.Validate(); err != nil {
		return report, services.Wrap(services.ErrValidation, stageVerify, "expectations", "Cannot verify with incomplete expectations", err)
	}
	ctx = services.WithStage(ctx, stageVerify)
	logger := logging.WithContext(ctx, v.logger).With(logging.String(logging.FieldOutput, path))

	probe, err := ffprobe.Inspect(ctx, exp.FFprobeBinary, path)
	if err != nil {
		return report, services.Wrap(services.ErrExternalTool, stageVerify, "ffprobe", "Failed to inspect fixture", err)
	}
	checkStreams(&report, probe, exp)

	packets, err := ffprobe.Packets(ctx, exp.FFprobeBinary, path, "v:0")
	if err != nil {
		return report, services.Wrap(services.ErrExternalTool, stageVerify, "ffprobe packets", "Failed to list video packets", err)
	}
	checkFrameCount(&report, packets, exp)
	checkKeyframes(&report, packets, exp)

	if probe.AudioStreamCount() > 0 {
		samples, err := decodeMono(ctx, exp.FFmpegBinary, path, exp.SampleRate)
		if err != nil {
			return report, services.Wrap(services.ErrExternalTool, stageVerify, "decode audio", "Failed to decode audio track", err)
		}
		checkTones(&report, samples, exp)
		checkSilence(&report, samples, exp)
	}

	failures := report.Failures()
	if len(failures) > 0 {
		logger.Warn("fixture verification failed",
			logging.String(logging.FieldEventType, "verify_failed"),
			logging.Int("checks", len(report.Results)),
			logging.Int("failures", len(failures)),
			logging.String(logging.FieldErrorHint, failures[0].Name+": "+failures[0].Detail),
		)
	} else {
		logger.Info("fixture verified",
			logging.String(logging.FieldEventType, "verify_passed"),
			logging.Int("checks", len(report.Results)),
		)
	}
	return report, nil
}

func checkStreams(r *Report, probe ffprobe.Result, exp Expectations) {
	videos := probe.StreamsOfType("video")
	switch {
	case len(videos) != 1:
		r.add(CheckVideoStream, false, "found %d video streams, want 1", len(videos))
	case videos[0].Width != exp.Width || videos[0].Height != exp.Height:
		r.add(CheckVideoStream, false, "video is %dx%d, want %dx%d", videos[0].Width, videos[0].Height, exp.Width, exp.Height)
	default:
		r.add(CheckVideoStream, true, "%s %dx%d", videos[0].CodecName, videos[0].Width, videos[0].Height)
	}

	audios := probe.StreamsOfType("audio")
	switch {
	case len(audios) != 1:
		r.add(CheckAudioStream, false, "found %d audio streams, want 1", len(audios))
	case audios[0].SampleRateHz() != 0 && audios[0].SampleRateHz() != exp.SampleRate:
		r.add(CheckAudioStream, false, "audio is %d Hz, want %d Hz", audios[0].SampleRateHz(), exp.SampleRate)
	default:
		r.add(CheckAudioStream, true, "%s %s Hz", audios[0].CodecName, audios[0].SampleRate)
	}

	got := probe.DurationSeconds()
	slack := 1/float64(exp.FPS) + float64(aacFrameSamples)/float64(exp.SampleRate)
	if math.IsNaN(got) || math.Abs(got-exp.Duration) > slack {
		r.add(CheckDuration, false, "container duration %.3f s, want %.3f s (±%.3f)", got, exp.Duration, slack)
	} else {
		r.add(CheckDuration, true, "%.3f s", got)
	}
}

func checkFrameCount(r *Report, packets []ffprobe.Packet, exp Expectations) {
	want := exp.FrameCount()
	got := len(packets)
	if got < want-1 || got > want+1 {
		r.add(CheckFrameCount, false, "%d video packets, want %d (±1)", got, want)
		return
	}
	r.add(CheckFrameCount, true, "%d video packets", got)
}

// checkKeyframes requires the first packet to be a keyframe and every run of
// packets that starts at a keyframe to be at most GOP long.
func checkKeyframes(r *Report, packets []ffprobe.Packet, exp Expectations) {
	if len(packets) == 0 {
		r.add(CheckKeyframes, false, "no video packets")
		return
	}
	keys := lo.FilterMap(packets, func(p ffprobe.Packet, i int) (int, bool) {
		return i, p.Keyframe()
	})
	if len(keys) == 0 || keys[0] != 0 {
		r.add(CheckKeyframes, false, "first video packet is not a keyframe")
		return
	}
	bounds := append(keys, len(packets))
	longest := 0
	for i := 1; i < len(bounds); i++ {
		longest = max(longest, bounds[i]-bounds[i-1])
	}
	if longest > exp.GOP {
		r.add(CheckKeyframes, false, "%d keyframes, longest run %d frames exceeds %d", len(keys), longest, exp.GOP)
		return
	}
	r.add(CheckKeyframes, true, "%d keyframes, longest run %d frames", len(keys), longest)
}

// checkTones measures each burst audible before the end of the track. Bursts
// cut shorter than the timing tolerance are not measured.
func checkTones(r *Report, samples []float64, exp Expectations) {
	schedule := exp.Schedule.Within(exp.Duration)
	freqs := schedule.Frequencies()
	margin := exp.Tolerance()
	for _, b := range schedule.Sorted() {
		if b.Duration < margin {
			continue
		}
		half := b.Duration/2 - margin
		if half <= 0 {
			half = b.Duration / 4
		}
		centre := b.Start + b.Duration/2
		span := window(samples, exp.SampleRate, centre-half, centre+half)
		name := fmt.Sprintf("%s@%gs", CheckTone, b.Start)
		if len(span) == 0 {
			r.add(name, false, "no audio around %.3f s", centre)
			continue
		}
		got, power := audio.Dominant(span, exp.SampleRate, freqs)
		switch {
		case power < MinTonePower:
			r.add(name, false, "%g Hz too weak at %.3f s (power %.3f < %.2f)", b.Frequency, centre, power, MinTonePower)
		case got != b.Frequency:
			r.add(name, false, "dominant tone %g Hz at %.3f s, want %g Hz", got, centre, b.Frequency)
		default:
			r.add(name, true, "%g Hz power %.3f", got, power)
		}
	}
}

// checkSilence measures the middle half of every gap between bursts,
// including the lead-in and tail of the track.
func checkSilence(r *Report, samples []float64, exp Expectations) {
	margin := exp.Tolerance()
	for _, gap := range gaps(exp.Schedule, exp.Duration) {
		quarter := (gap[1] - gap[0]) / 4
		if quarter < margin {
			continue
		}
		span := window(samples, exp.SampleRate, gap[0]+quarter, gap[1]-quarter)
		if len(span) == 0 {
			continue
		}
		name := fmt.Sprintf("%s@%gs", CheckSilence, gap[0])
		rms := audio.RMS(span)
		if rms > MaxSilenceRMS {
			r.add(name, false, "gap %.3f-%.3f s has RMS %.4f > %.2f", gap[0], gap[1], rms, MaxSilenceRMS)
			continue
		}
		r.add(name, true, "RMS %.4f", rms)
	}
}

// gaps returns the [start, end) ranges of a total-second track not covered by
// any burst.
func gaps(s audio.Schedule, total float64) [][2]float64 {
	var out [][2]float64
	cursor := 0.0
	for _, b := range s.Within(total).Sorted() {
		if b.Start > cursor {
			out = append(out, [2]float64{cursor, b.Start})
		}
		cursor = math.Max(cursor, b.End())
	}
	if total-cursor > 1e-9 {
		out = append(out, [2]float64{cursor, total})
	}
	return out
}

// Summary renders a one-line description of the report.
func (r Report) Summary() string {
	failures := r.Failures()
	if len(failures) == 0 {
		return fmt.Sprintf("%d checks passed", len(r.Results))
	}
	names := lo.Map(failures, func(res Result, _ int) string { return res.Name })
	return fmt.Sprintf("%d of %d checks failed: %s", len(failures), len(r.Results), strings.Join(names, ", "))
}
