package audio

import (
	"fmt"
	"math"
	"sort"
)

// DefaultBeepDuration is the length of each scheduled beep in seconds.
const DefaultBeepDuration = 0.2

// Beep is one scheduled tone burst.
type Beep struct {
	Frequency float64
	Start     float64
	Duration  float64
}

// End returns the time the burst stops.
func (b Beep) End() float64 { return b.Start + b.Duration }

// Schedule lists the bursts of a track.
type Schedule []Beep

// DefaultSchedule returns the four-beep pattern: 440, 550, 660 and 880 Hz at
// 0, 2.5, 5 and 7.5 seconds.
func DefaultSchedule() Schedule {
	return Schedule{
		{Frequency: 440, Start: 0, Duration: DefaultBeepDuration},
		{Frequency: 550, Start: 2.5, Duration: DefaultBeepDuration},
		{Frequency: 660, Start: 5, Duration: DefaultBeepDuration},
		{Frequency: 880, Start: 7.5, Duration: DefaultBeepDuration},
	}
}

// Validate checks every beep is a positive, finite burst below the Nyquist
// limit of rate. Beeps may extend past the end of a track; Render and Within
// cut them at the track length.
func (s Schedule) Validate(rate int) error {
	for i, b := range s {
		if err := checkPositive(fmt.Sprintf("beep %d frequency", i), b.Frequency); err != nil {
			return err
		}
		if err := checkPositive(fmt.Sprintf("beep %d duration", i), b.Duration); err != nil {
			return err
		}
		if math.IsNaN(b.Start) || math.IsInf(b.Start, 0) || b.Start < 0 {
			return fmt.Errorf("beep %d start must be finite and not negative, got %v", i, b.Start)
		}
		if rate > 0 && b.Frequency >= float64(rate)/2 {
			return fmt.Errorf("beep %d frequency %v Hz must be below the Nyquist limit %v Hz", i, b.Frequency, float64(rate)/2)
		}
	}
	return nil
}

// Within returns the beeps audible in a total-second track. Beeps starting at
// or after total are dropped and the rest end no later than total.
func (s Schedule) Within(total float64) Schedule {
	out := make(Schedule, 0, len(s))
	for _, b := range s {
		if b.Start >= total {
			continue
		}
		if b.End() > total {
			b.Duration = total - b.Start
		}
		out = append(out, b)
	}
	return out
}

// Sorted returns the beeps ordered by start time.
func (s Schedule) Sorted() Schedule {
	out := append(Schedule(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Frequencies returns the distinct beep frequencies in schedule order.
func (s Schedule) Frequencies() []float64 {
	seen := make(map[float64]struct{}, len(s))
	out := make([]float64, 0, len(s))
	for _, b := range s {
		if _, ok := seen[b.Frequency]; ok {
			continue
		}
		seen[b.Frequency] = struct{}{}
		out = append(out, b.Frequency)
	}
	return out
}

// Silent reports whether time t (seconds) falls outside every burst.
func (s Schedule) Silent(t float64) bool {
	for _, b := range s {
		if t >= b.Start && t < b.End() {
			return false
		}
	}
	return true
}

// Render synthesizes every beep and mixes them into a total-second track.
// Beeps starting at or after total are skipped and the tail of a beep that
// overruns the track is dropped.
func (s Schedule) Render(total float64, rate int) (Track, error) {
	if err := s.Validate(rate); err != nil {
		return Track{}, err
	}
	placements := make([]Placement, 0, len(s))
	for i, b := range s {
		if b.Start >= total {
			continue
		}
		seg, err := Tone(b.Frequency, b.Duration, rate)
		if err != nil {
			return Track{}, fmt.Errorf("beep %d: %w", i, err)
		}
		placements = append(placements, Placement{Segment: seg, Start: b.Start})
	}
	return Compose(total, rate, placements...)
}
