package audio

import (
	"fmt"
)

// Placement positions a segment on the track timeline.
type Placement struct {
	Segment Segment
	Start   float64
}

// Track is a full-length stereo buffer.
type Track struct {
	SampleRate int
	Samples    []Sample
}

// Duration returns the track length in seconds.
func (t Track) Duration() float64 {
	return Segment(t).Duration()
}

// Left returns a copy of the left channel.
func (t Track) Left() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.L
	}
	return out
}

// Window returns the samples covering [start, end) seconds, clipped to the
// track bounds.
func (t Track) Window(start, end float64) []Sample {
	lo := SampleCount(start, t.SampleRate)
	hi := SampleCount(end, t.SampleRate)
	if lo > len(t.Samples) {
		lo = len(t.Samples)
	}
	if hi > len(t.Samples) {
		hi = len(t.Samples)
	}
	if hi < lo {
		hi = lo
	}
	return t.Samples[lo:hi]
}

// Compose mixes placements into a track exactly total seconds long. Samples
// sum where segments overlap; anything past the end of the track is dropped.
func Compose(total float64, rate int, placements ...Placement) (Track, error) {
	if err := checkPositive("track duration", total); err != nil {
		return Track{}, err
	}
	if rate <= 0 {
		return Track{}, fmt.Errorf("sample rate must be positive, got %d", rate)
	}
	track := Track{SampleRate: rate, Samples: make([]Sample, SampleCount(total, rate))}
	for i, p := range placements {
		if p.Segment.SampleRate != rate {
			return Track{}, fmt.Errorf("placement %d: sample rate %d does not match track rate %d", i, p.Segment.SampleRate, rate)
		}
		if p.Start < 0 {
			return Track{}, fmt.Errorf("placement %d: start %v must not be negative", i, p.Start)
		}
		offset := SampleCount(p.Start, rate)
		for j, s := range p.Segment.Samples {
			k := offset + j
			if k >= len(track.Samples) {
				break
			}
			track.Samples[k].L += s.L
			track.Samples[k].R += s.R
		}
	}
	return track, nil
}
