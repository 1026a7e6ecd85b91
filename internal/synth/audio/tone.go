package audio

import (
	"fmt"
	"math"
)

// DefaultSampleRate is the CD sample rate used by the fixture.
const DefaultSampleRate = 44100

// Sample is one stereo sample pair.
type Sample struct {
	L float64
	R float64
}

// Segment is a finite stereo buffer.
type Segment struct {
	SampleRate int
	Samples    []Sample
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// SampleCount converts seconds to a whole number of samples at rate.
func SampleCount(seconds float64, rate int) int {
	if seconds <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(rate)))
}

// Tone renders a sine at freq Hz lasting duration seconds. Sample i sits at
// i*duration/n, so the timeline covers [0, duration) without the endpoint.
func Tone(freq, duration float64, rate int) (Segment, error) {
	if err := checkPositive("frequency", freq); err != nil {
		return Segment{}, err
	}
	if err := checkPositive("duration", duration); err != nil {
		return Segment{}, err
	}
	if rate <= 0 {
		return Segment{}, fmt.Errorf("sample rate must be positive, got %d", rate)
	}
	if nyquist := float64(rate) / 2; freq >= nyquist {
		return Segment{}, fmt.Errorf("frequency %v Hz must be below the Nyquist limit %v Hz", freq, nyquist)
	}
	n := SampleCount(duration, rate)
	if n == 0 {
		return Segment{}, fmt.Errorf("duration %v s is shorter than one sample at %d Hz", duration, rate)
	}
	samples := make([]Sample, n)
	step := duration / float64(n)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) * step)
		samples[i] = Sample{L: v, R: v}
	}
	return Segment{SampleRate: rate, Samples: samples}, nil
}

func checkPositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite", name)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}
