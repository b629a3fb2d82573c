package tracking

import "image"

// Patch is a square window around an anchor, clamped to the frame.
type Patch struct {
	Anchor image.Point     // requested center, frame space
	Bounds image.Rectangle // clamped window, frame space
}

// PatchAt returns the size x size patch centered on anchor within frame.
// ok is false when either clamped side is shorter than minSize; such a patch
// must not be handed to detection.
func PatchAt(frame image.Rectangle, anchor image.Point, size, minSize int) (p Patch, ok bool) {
	half := size / 2
	r := image.Rect(anchor.X-half, anchor.Y-half, anchor.X-half+size, anchor.Y-half+size)
	r = r.Intersect(frame)

	p = Patch{Anchor: anchor, Bounds: r}
	if r.Dx() < minSize || r.Dy() < minSize {
		return p, false
	}
	return p, true
}

// ToFrame maps a patch-local point to frame space.
// For an unclamped patch this is anchor + local - size/2. A patch clamped at
// the left or top edge starts at the edge, so local points map from there.
func (p Patch) ToFrame(local image.Point) image.Point {
	return p.Bounds.Min.Add(local)
}

// ToLocal maps a frame-space point into the patch. It inverts ToFrame.
func (p Patch) ToLocal(pt image.Point) image.Point {
	return pt.Sub(p.Bounds.Min)
}
