package capture

import (
	"fmt"
	"image"
)

// Region is the display rectangle being captured.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// CenteredRegion returns a width x height region centered on a screenW x screenH display.
func CenteredRegion(screenW, screenH, width, height int) Region {
	left := (screenW - width) / 2
	top := (screenH - height) / 2
	return Region{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the region width in pixels.
func (r Region) Width() int { return r.Right - r.Left }

// Height returns the region height in pixels.
func (r Region) Height() int { return r.Bottom - r.Top }

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Validate checks the region is non-empty and fits on the display.
func (r Region) Validate(screenW, screenH int) error {
	if r.Width() <= 0 || r.Height() <= 0 {
		return fmt.Errorf("empty capture region %+v", r)
	}
	if r.Left < 0 || r.Top < 0 || r.Right > screenW || r.Bottom > screenH {
		return fmt.Errorf("capture region %+v outside %dx%d display", r, screenW, screenH)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}
