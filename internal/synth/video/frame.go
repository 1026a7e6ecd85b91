package video

import (
	"image"
	"image/color"
)

// BytesPerPixel is the size of one rgb24 pixel.
const BytesPerPixel = 3

// Frame is an opaque rgb24 image stored row-major, three bytes per pixel.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a frame filled with bg.
func NewFrame(width, height int, bg color.RGBA) Frame {
	pix := make([]byte, width*height*BytesPerPixel)
	if bg.R != 0 || bg.G != 0 || bg.B != 0 {
		for i := 0; i < len(pix); i += BytesPerPixel {
			pix[i] = bg.R
			pix[i+1] = bg.G
			pix[i+2] = bg.B
		}
	}
	return Frame{Width: width, Height: height, Pix: pix}
}

// At returns the pixel at (x, y).
func (f Frame) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	i := (y*f.Width + x) * BytesPerPixel
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 255}
}

// FillRect paints the intersection of r and the frame with c.
func (f Frame) FillRect(r image.Rectangle, c color.RGBA) {
	r = r.Intersect(image.Rect(0, 0, f.Width, f.Height))
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * f.Width * BytesPerPixel
		for x := r.Min.X; x < r.Max.X; x++ {
			i := row + x*BytesPerPixel
			f.Pix[i] = c.R
			f.Pix[i+1] = c.G
			f.Pix[i+2] = c.B
		}
	}
}

// Image converts the frame to an *image.RGBA for still encoders.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for src, dst := 0, 0; src < len(f.Pix); src, dst = src+BytesPerPixel, dst+4 {
		img.Pix[dst] = f.Pix[src]
		img.Pix[dst+1] = f.Pix[src+1]
		img.Pix[dst+2] = f.Pix[src+2]
		img.Pix[dst+3] = 0xff
	}
	return img
}
