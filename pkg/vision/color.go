// Package vision provides the color mask, blob extraction and circle detection
// used by the tracker. All image work goes through gocv with reusable buffers.
package vision

import (
	"fmt"
	"image"

	"github.com/teslashibe/go-circletrack/pkg/capture"
	"gocv.io/x/gocv"
)

// ColorRange is an inclusive per-channel BGR bound.
type ColorRange struct {
	Lower [3]uint8 `yaml:"lower" json:"lower"`
	Upper [3]uint8 `yaml:"upper" json:"upper"`
}

// DefaultColorRange returns the reference purple outline color.
func DefaultColorRange() ColorRange {
	return ColorRange{
		Lower: [3]uint8{120, 0, 120},
		Upper: [3]uint8{255, 50, 255},
	}
}

// Contains reports whether a BGR pixel lies within the range.
func (r ColorRange) Contains(b, g, rd uint8) bool {
	return b >= r.Lower[0] && b <= r.Upper[0] &&
		g >= r.Lower[1] && g <= r.Upper[1] &&
		rd >= r.Lower[2] && rd <= r.Upper[2]
}

// Validate checks every lower bound is at most its upper bound.
func (r ColorRange) Validate() error {
	for i := range r.Lower {
		if r.Lower[i] > r.Upper[i] {
			return fmt.Errorf("color channel %d: lower %d > upper %d", i, r.Lower[i], r.Upper[i])
		}
	}
	return nil
}

func (r ColorRange) scalars() (lower, upper gocv.Scalar) {
	lower = gocv.NewScalar(float64(r.Lower[0]), float64(r.Lower[1]), float64(r.Lower[2]), 0)
	upper = gocv.NewScalar(float64(r.Upper[0]), float64(r.Upper[1]), float64(r.Upper[2]), 0)
	return lower, upper
}

// ColorMask thresholds images against a ColorRange.
// Not safe for concurrent use: it owns reusable scratch buffers.
type ColorMask struct {
	lower, upper gocv.Scalar

	scratch gocv.Mat // presence-test mask
	sampled gocv.Mat // half-resolution copy for the sampled test
}

// NewColorMask creates a mask for rng.
func NewColorMask(rng ColorRange) *ColorMask {
	lower, upper := rng.scalars()
	return &ColorMask{
		lower:   lower,
		upper:   upper,
		scratch: gocv.NewMat(),
		sampled: gocv.NewMat(),
	}
}

// Build writes a binary mask of src into dst: 255 where every channel matches.
func (m *ColorMask) Build(src gocv.Mat, dst *gocv.Mat) {
	gocv.InRangeWithScalar(src, m.lower, m.upper, dst)
}

// ContainsTarget reports whether any pixel of src matches.
func (m *ColorMask) ContainsTarget(src gocv.Mat) bool {
	if src.Empty() {
		return false
	}
	m.Build(src, &m.scratch)
	return gocv.CountNonZero(m.scratch) > 0
}

// ContainsTargetSampled checks only every second pixel in each axis.
// A thin target can be missed; a match always corresponds to a real pixel.
func (m *ColorMask) ContainsTargetSampled(src gocv.Mat) bool {
	if src.Empty() {
		return false
	}
	size := image.Pt((src.Cols()+1)/2, (src.Rows()+1)/2)
	gocv.Resize(src, &m.sampled, size, 0, 0, gocv.InterpolationNearestNeighbor)
	return m.ContainsTarget(m.sampled)
}

// Close releases the scratch buffers.
func (m *ColorMask) Close() error {
	m.scratch.Close()
	m.sampled.Close()
	return nil
}

// LoadFrame copies f into dst, reallocating dst only when the size changes.
func LoadFrame(dst *gocv.Mat, f *capture.Frame) error {
	if f == nil {
		return fmt.Errorf("load frame: nil frame")
	}
	if dst.Empty() || dst.Rows() != f.Height || dst.Cols() != f.Width || dst.Type() != gocv.MatTypeCV8UC3 {
		dst.Close()
		*dst = gocv.NewMatWithSize(f.Height, f.Width, gocv.MatTypeCV8UC3)
	}

	data, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("load frame: %w", err)
	}

	row := f.Width * 3
	if f.Tight() {
		copy(data, f.Pix[:row*f.Height])
		return nil
	}
	for y := 0; y < f.Height; y++ {
		copy(data[y*row:(y+1)*row], f.Pix[y*f.Stride:y*f.Stride+row])
	}
	return nil
}
