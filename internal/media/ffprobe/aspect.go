package ffprobe

import (
	"fmt"
	"math"
)

var standardAspects = []struct {
	name  string
	value float64
}{
	{"4:3", 4.0 / 3.0},
	{"16:9", 16.0 / 9.0},
	{"1.85:1", 1.85},
	{"2.39:1", 2.39},
}

// AspectLabel names the display aspect of a stream: the nearest standard
// ratio when within 2 %, otherwise "W.WW:1". Empty for non-video streams.
func (s Stream) AspectLabel() string {
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	ratio := float64(s.Width) / float64(s.Height)
	best, dist := "", math.Inf(1)
	for _, std := range standardAspects {
		if d := math.Abs(ratio - std.value); d < dist {
			best, dist = std.name, d
		}
	}
	if dist/ratio <= 0.02 {
		return best
	}
	return fmt.Sprintf("%.2f:1", ratio)
}
