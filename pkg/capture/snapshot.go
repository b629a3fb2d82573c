package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// SaveSnapshot writes f to path; the format follows the file extension.
func SaveSnapshot(f *Frame, path string) error {
	if f == nil {
		return fmt.Errorf("snapshot: no frame")
	}
	if !f.Tight() {
		return fmt.Errorf("snapshot: frame stride %d is not tight for width %d", f.Stride, f.Width)
	}

	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return fmt.Errorf("snapshot: wrap frame: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("snapshot: failed to write %s", path)
	}
	return nil
}
