// Package capture owns the screen-capture producer and the single-slot frame
// buffer the tracking loop reads from.
package capture

import (
	"image"
	"time"
)

// Reference capture size.
const (
	DefaultWidth  = 300
	DefaultHeight = 450
)

// Frame is a 3-channel BGR pixel grid.
// Published frames are never written again, so readers may hold one for a
// whole iteration without copying.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Stride int // bytes per row

	Seq        uint64
	CapturedAt time.Time
}

// NewFrame allocates a black frame with a tight stride.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Pix:    make([]byte, width*height*3),
		Width:  width,
		Height: height,
		Stride: width * 3,
	}
}

// FromRGBA converts a captured RGBA image into a BGR frame.
func FromRGBA(img *image.RGBA) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		dst := f.Pix[y*f.Stride : y*f.Stride+f.Width*3]
		for x := 0; x < f.Width; x++ {
			dst[x*3+0] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+0]
		}
	}
	return f
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Center returns the frame's center pixel.
func (f *Frame) Center() image.Point {
	return image.Pt(f.Width/2, f.Height/2)
}

// At returns the BGR value at (x, y).
func (f *Frame) At(x, y int) (b, g, r uint8) {
	i := y*f.Stride + x*3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set writes a BGR value at (x, y). Only valid before the frame is published.
func (f *Frame) Set(x, y int, b, g, r uint8) {
	i := y*f.Stride + x*3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = b, g, r
}

// Tight reports whether rows are packed without padding.
func (f *Frame) Tight() bool {
	return f.Stride == f.Width*3
}

// Clone returns a deep copy of f with Seq and CapturedAt cleared.
func (f *Frame) Clone() *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{
		Pix:    pix,
		Width:  f.Width,
		Height: f.Height,
		Stride: f.Stride,
	}
}
