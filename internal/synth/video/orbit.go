package video

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Orbit renders the box on an elliptical path that completes one lap per
// Period seconds.
type Orbit struct {
	geometry Geometry
	period   float64
}

// NewOrbit validates g and period and returns the renderer.
func NewOrbit(g Geometry, period float64) (*Orbit, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(period) || math.IsInf(period, 0) {
		return nil, errors.New("orbit period must be finite")
	}
	if period <= 0 {
		return nil, fmt.Errorf("orbit period must be positive, got %v", period)
	}
	return &Orbit{geometry: g, period: period}, nil
}

// Geometry returns the canvas description.
func (o *Orbit) Geometry() Geometry { return o.geometry }

// Period returns the lap duration in seconds.
func (o *Orbit) Period() float64 { return o.period }

// Phase wraps t into [0, period).
func (o *Orbit) Phase(t float64) float64 {
	phase := math.Mod(t, o.period)
	if phase < 0 {
		phase += o.period
	}
	return phase
}

// Position returns the top-left corner of the box at time t. Coordinates are
// truncated toward zero, not rounded.
func (o *Orbit) Position(t float64) image.Point {
	g := o.geometry
	angle := 2 * math.Pi * o.Phase(t) / o.period
	cx, cy := g.Center()
	x := cx + float64(g.OrbitWidth())/2*math.Cos(angle)
	y := cy + float64(g.OrbitHeight())/2*math.Sin(angle)
	return image.Pt(int(x), int(y))
}

// BoxAt returns the rectangle covered by the box at time t.
func (o *Orbit) BoxAt(t float64) image.Rectangle {
	p := o.Position(t)
	size := o.geometry.BoxSize
	return image.Rect(p.X, p.Y, p.X+size, p.Y+size)
}

// FrameAt renders the frame at time t.
func (o *Orbit) FrameAt(t float64) Frame {
	g := o.geometry
	frame := NewFrame(g.Width, g.Height, g.Background)
	frame.FillRect(o.BoxAt(t), g.Box)
	return frame
}

// FrameCount is the number of frames sampled at fps over one period.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Round(duration * float64(fps)))
}

// FrameTime is the presentation time of frame index i at fps.
func FrameTime(i, fps int) float64 {
	return float64(i) / float64(fps)
}
