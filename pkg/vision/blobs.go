package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// statArea is the CC_STAT_AREA column of the connected-components stats matrix.
const statArea = 4

// Blob is one connected region of a binary mask.
type Blob struct {
	Centroid image.Point // area-weighted, truncated toward zero
	Area     int
}

// BlobFinder extracts connected regions from a mask.
// Its label/stat buffers are reused between calls.
type BlobFinder struct {
	minArea int

	labels    gocv.Mat
	stats     gocv.Mat
	centroids gocv.Mat
	out       []Blob
}

// NewBlobFinder creates a finder that drops regions smaller than minArea pixels.
func NewBlobFinder(minArea int) *BlobFinder {
	return &BlobFinder{
		minArea:   minArea,
		labels:    gocv.NewMat(),
		stats:     gocv.NewMat(),
		centroids: gocv.NewMat(),
	}
}

// Find returns every 8-connected foreground region of mask.
// The returned slice is reused by the next call.
func (f *BlobFinder) Find(mask gocv.Mat) []Blob {
	f.out = f.out[:0]
	if mask.Empty() {
		return f.out
	}

	n := gocv.ConnectedComponentsWithStats(mask, &f.labels, &f.stats, &f.centroids)

	// label 0 is the background
	for i := 1; i < n; i++ {
		area := int(f.stats.GetIntAt(i, statArea))
		if area == 0 || area < f.minArea {
			continue
		}
		f.out = append(f.out, Blob{
			Centroid: image.Pt(int(f.centroids.GetDoubleAt(i, 0)), int(f.centroids.GetDoubleAt(i, 1))),
			Area:     area,
		})
	}
	return f.out
}

// Close releases the buffers.
func (f *BlobFinder) Close() error {
	f.labels.Close()
	f.stats.Close()
	f.centroids.Close()
	return nil
}
