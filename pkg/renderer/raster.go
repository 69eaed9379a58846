package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Raster is an 8-bit RGB image, row-major with the top row first
type Raster struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel
}

// NewRaster allocates a black raster
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// At returns the RGB bytes of pixel (x, y)
func (r *Raster) At(x, y int) (red, green, blue uint8) {
	i := r.offset(x, y)
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// SetColor stores the linear color c at pixel (x, y)
func (r *Raster) SetColor(x, y int, c core.Color) {
	i := r.offset(x, y)
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = ColorToRGB(c)
}

// ToImage copies the raster into an opaque RGBA image for encoders
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			red, green, blue := r.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: red, G: green, B: blue, A: 255})
		}
	}
	return img
}

func (r *Raster) offset(x, y int) int {
	return (y*r.Width + x) * 3
}

// ColorToRGB converts a linear color to bytes without gamma correction
func ColorToRGB(c core.Color) (red, green, blue uint8) {
	return channelToByte(c.X), channelToByte(c.Y), channelToByte(c.Z)
}

// channelToByte maps [0,1) onto 0..255 by truncating clamp(v*256, 0, 255). NaN maps to 0.
func channelToByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(max(0, min(255, v*256)))
}
