package tui

import "github.com/pkarell/termlens/internal/overlay"

// viewportGeometry reports selection rectangles in viewport-local
// coordinates plus the viewport's current offset within the terminal
// frame. The offset depends on the scroll position, so the model rebuilds
// the geometry on every selection rather than caching it.
type viewportGeometry struct {
	rects  []overlay.Rect
	offset overlay.Point
}

// SelectionRect returns the aggregate bounding box when the selection
// sits on a single line. A multi-line selection reports a zero-size rect
// so the resolver falls back to the first sub-rectangle.
func (g viewportGeometry) SelectionRect() overlay.Rect {
	if len(g.rects) != 1 {
		return overlay.Rect{}
	}
	return g.rects[0]
}

func (g viewportGeometry) SelectionRects() []overlay.Rect {
	return g.rects
}

func (g viewportGeometry) HostFrameOffset() overlay.Point {
	return g.offset
}
