package video

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	DefaultWidth   = 640
	DefaultHeight  = 360
	DefaultBoxSize = 50
	DefaultMargin  = 50
)

var (
	// Red is the default box colour.
	Red = color.RGBA{R: 255, A: 255}
	// Black is the default background colour.
	Black = color.RGBA{A: 255}
)

// Geometry describes the canvas and the moving box.
type Geometry struct {
	Width      int
	Height     int
	BoxSize    int
	Margin     int
	Box        color.RGBA
	Background color.RGBA
}

// DefaultGeometry returns the 640x360 canvas with a 50px red box.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		BoxSize:    DefaultBoxSize,
		Margin:     DefaultMargin,
		Box:        Red,
		Background: Black,
	}
}

// Validate reports whether the box and its orbit fit inside the canvas.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", g.Width, g.Height)
	}
	if g.Width%2 != 0 || g.Height%2 != 0 {
		return fmt.Errorf("frame size must be even for 4:2:0 encoding, got %dx%d", g.Width, g.Height)
	}
	if g.BoxSize <= 0 {
		return fmt.Errorf("box size must be positive, got %d", g.BoxSize)
	}
	if g.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", g.Margin)
	}
	if g.OrbitWidth() < 0 || g.OrbitHeight() < 0 {
		return errors.New("box and margins do not fit inside the frame")
	}
	return nil
}

// OrbitWidth is the horizontal diameter of the path traced by the box corner.
func (g Geometry) OrbitWidth() int {
	return g.Width - 2*g.Margin - g.BoxSize
}

// OrbitHeight is the vertical diameter of the path traced by the box corner.
func (g Geometry) OrbitHeight() int {
	return g.Height - 2*g.Margin - g.BoxSize
}

// Center is the top-left corner of a box centred in the frame.
func (g Geometry) Center() (float64, float64) {
	return float64(g.Width-g.BoxSize) / 2, float64(g.Height-g.BoxSize) / 2
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque colour.
func ParseHexColor(value string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #rrggbb", value)
	}
	var channels [3]uint8
	for i := range channels {
		parsed, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", value, err)
		}
		channels[i] = uint8(parsed)
	}
	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}, nil
}

// FormatHexColor renders c as "#rrggbb".
func FormatHexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
