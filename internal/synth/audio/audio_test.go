package audio

import (
	"math"
	"testing"
)

func TestToneLengthAndChannels(t *testing.T) {
	tests := []struct {
		freq     float64
		duration float64
		want     int
	}{
		{440, 0.2, 8820},
		{880, 0.2, 8820},
		{1000, 0.01, 441},
		{100, 1.0 / 3, 14700},
	}
	for _, tt := range tests {
		seg, err := Tone(tt.freq, tt.duration, DefaultSampleRate)
		if err != nil {
			t.Fatalf("Tone(%v, %v): %v", tt.freq, tt.duration, err)
		}
		if len(seg.Samples) != tt.want {
			t.Fatalf("Tone(%v, %v) length = %d, want %d", tt.freq, tt.duration, len(seg.Samples), tt.want)
		}
		if want := int(math.Round(tt.duration * DefaultSampleRate)); len(seg.Samples) != want {
			t.Fatalf("length %d does not match round(d*rate)=%d", len(seg.Samples), want)
		}
		for i, s := range seg.Samples {
			if s.L != s.R {
				t.Fatalf("sample %d: channels differ (%v vs %v)", i, s.L, s.R)
			}
		}
	}
}

func TestToneValues(t *testing.T) {
	seg, err := Tone(440, 0.2, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Tone: %v", err)
	}
	if seg.Samples[0].L != 0 {
		t.Fatalf("expected first sample to be 0, got %v", seg.Samples[0].L)
	}
	for _, i := range []int{1, 100, 4410, 8819} {
		want := math.Sin(2 * math.Pi * 440 * float64(i) / DefaultSampleRate)
		if math.Abs(seg.Samples[i].L-want) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, seg.Samples[i].L, want)
		}
	}
	if got := seg.Duration(); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("Duration = %v", got)
	}
}

func TestToneRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		freq float64
		dur  float64
		rate int
	}{
		{"zero freq", 0, 0.2, DefaultSampleRate},
		{"negative duration", 440, -1, DefaultSampleRate},
		{"nan duration", 440, math.NaN(), DefaultSampleRate},
		{"zero rate", 440, 0.2, 0},
		{"above nyquist", 30000, 0.2, DefaultSampleRate},
		{"sub-sample duration", 440, 1e-7, DefaultSampleRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Tone(tc.freq, tc.dur, tc.rate); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaultScheduleRendersSilenceOutsideBursts(t *testing.T) {
	schedule := DefaultSchedule()
	track, err := schedule.Render(10, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(track.Samples) != 441000 {
		t.Fatalf("track length = %d, want 441000", len(track.Samples))
	}
	nonZero := 0
	for i, s := range track.Samples {
		ts := float64(i) / DefaultSampleRate
		if schedule.Silent(ts) {
			if s.L != 0 || s.R != 0 {
				t.Fatalf("sample %d (t=%v) outside bursts is %v", i, ts, s)
			}
			continue
		}
		if s.L != s.R {
			t.Fatalf("sample %d: channels differ", i)
		}
		if s.L != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("expected audible samples inside bursts")
	}
}

func TestDefaultScheduleBurstFrequencies(t *testing.T) {
	schedule := DefaultSchedule()
	track, err := schedule.Render(10, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	freqs := schedule.Frequencies()
	for _, b := range schedule {
		window := make([]float64, 0)
		for _, s := range track.Window(b.Start, b.End()) {
			window = append(window, s.L)
		}
		got, power := Dominant(window, DefaultSampleRate, freqs)
		if got != b.Frequency {
			t.Fatalf("burst at %v s: dominant %v Hz, want %v Hz", b.Start, got, b.Frequency)
		}
		if power < 0.2 {
			t.Fatalf("burst at %v s: weak power %v", b.Start, power)
		}
	}
}

func TestComposeAddsOverlapsWithoutNormalization(t *testing.T) {
	a := Segment{SampleRate: 10, Samples: []Sample{{1, 1}, {1, 1}, {1, 1}}}
	b := Segment{SampleRate: 10, Samples: []Sample{{0.5, 0.25}, {0.5, 0.25}}}
	track, err := Compose(0.5, 10, Placement{Segment: a, Start: 0}, Placement{Segment: b, Start: 0.1})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	want := []Sample{{1, 1}, {1.5, 1.25}, {1.5, 1.25}, {0, 0}, {0, 0}}
	if len(track.Samples) != len(want) {
		t.Fatalf("length = %d, want %d", len(track.Samples), len(want))
	}
	for i := range want {
		if track.Samples[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, track.Samples[i], want[i])
		}
	}
}

func TestComposeTruncatesAtTrackEnd(t *testing.T) {
	seg := Segment{SampleRate: 10, Samples: []Sample{{1, 1}, {1, 1}, {1, 1}, {1, 1}}}
	track, err := Compose(0.3, 10, Placement{Segment: seg, Start: 0.1})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(track.Samples) != 3 {
		t.Fatalf("length = %d, want 3", len(track.Samples))
	}
	if track.Samples[0] != (Sample{}) || track.Samples[2] != (Sample{1, 1}) {
		t.Fatalf("unexpected samples %v", track.Samples)
	}
}

func TestComposeRejectsMismatchedRate(t *testing.T) {
	seg := Segment{SampleRate: 8000, Samples: []Sample{{1, 1}}}
	if _, err := Compose(1, 10, Placement{Segment: seg}); err == nil {
		t.Fatal("expected sample rate mismatch error")
	}
	if _, err := Compose(0, 10); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := Compose(1, 10, Placement{Segment: Segment{SampleRate: 10}, Start: -1}); err == nil {
		t.Fatal("expected error for negative start")
	}
}

func TestScheduleValidate(t *testing.T) {
	if err := DefaultSchedule().Validate(DefaultSampleRate); err != nil {
		t.Fatalf("default schedule invalid: %v", err)
	}
	bad := Schedule{{Frequency: 440, Start: -0.1, Duration: 0.2}}
	if err := bad.Validate(DefaultSampleRate); err == nil {
		t.Fatal("expected error for negative start")
	}
	bad = Schedule{{Frequency: 0, Start: 0, Duration: 0.2}}
	if err := bad.Validate(DefaultSampleRate); err == nil {
		t.Fatal("expected error for zero frequency")
	}
	bad = Schedule{{Frequency: 30000, Start: 0, Duration: 0.2}}
	if err := bad.Validate(DefaultSampleRate); err == nil {
		t.Fatal("expected error above the Nyquist limit")
	}
}

func TestScheduleWithinClipsToTrack(t *testing.T) {
	got := DefaultSchedule().Within(7.6)
	if len(got) != 4 {
		t.Fatalf("Within(7.6) kept %d beeps, want 4", len(got))
	}
	if math.Abs(got[3].End()-7.6) > 1e-9 {
		t.Fatalf("last beep ends at %v, want 7.6", got[3].End())
	}
	got = DefaultSchedule().Within(5)
	if len(got) != 2 || got[0].Frequency != 440 || got[1].Frequency != 550 {
		t.Fatalf("Within(5) = %v, want the 440 and 550 Hz beeps", got)
	}
	if got[1].Duration != DefaultBeepDuration {
		t.Fatalf("beep inside the track was shortened to %v", got[1].Duration)
	}
}

func TestRenderDropsBurstsPastTrackEnd(t *testing.T) {
	track, err := DefaultSchedule().Render(5, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(track.Samples) != 220500 {
		t.Fatalf("track length = %d, want 220500", len(track.Samples))
	}
	if rms := RMS(samplesLeft(track.Window(4.9, 5))); rms != 0 {
		t.Fatalf("tail before the track end should be silent, RMS %v", rms)
	}

	track, err = DefaultSchedule().Render(7.6, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Render(7.6): %v", err)
	}
	if len(track.Samples) != SampleCount(7.6, DefaultSampleRate) {
		t.Fatalf("track length = %d, want %d", len(track.Samples), SampleCount(7.6, DefaultSampleRate))
	}
	got, _ := Dominant(samplesLeft(track.Window(7.5, 7.6)), DefaultSampleRate, DefaultSchedule().Frequencies())
	if got != 880 {
		t.Fatalf("truncated burst dominant %v Hz, want 880 Hz", got)
	}
}

func samplesLeft(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.L
	}
	return out
}

func TestScheduleSortedAndFrequencies(t *testing.T) {
	s := Schedule{{Frequency: 880, Start: 5}, {Frequency: 440, Start: 1}, {Frequency: 880, Start: 2}}
	sorted := s.Sorted()
	if sorted[0].Start != 1 || sorted[1].Start != 2 || sorted[2].Start != 5 {
		t.Fatalf("unexpected order %v", sorted)
	}
	if s[0].Start != 5 {
		t.Fatal("Sorted mutated the receiver")
	}
	freqs := s.Frequencies()
	if len(freqs) != 2 || freqs[0] != 880 || freqs[1] != 440 {
		t.Fatalf("unexpected frequencies %v", freqs)
	}
}

func TestGoertzelAndRMS(t *testing.T) {
	seg, err := Tone(660, 0.1, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Tone: %v", err)
	}
	mono := Track(seg).Left()
	if p := Goertzel(mono, DefaultSampleRate, 660); math.Abs(p-0.25) > 0.01 {
		t.Fatalf("Goertzel at tone frequency = %v, want ~0.25", p)
	}
	if p := Goertzel(mono, DefaultSampleRate, 440); p > 0.01 {
		t.Fatalf("Goertzel off tone = %v, want ~0", p)
	}
	if r := RMS(mono); math.Abs(r-math.Sqrt2/2) > 0.01 {
		t.Fatalf("RMS = %v, want ~0.707", r)
	}
	if RMS(nil) != 0 || Goertzel(nil, DefaultSampleRate, 440) != 0 {
		t.Fatal("expected zero for empty input")
	}
}
