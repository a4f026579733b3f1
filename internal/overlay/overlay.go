// Package overlay turns raw text selections into validated lookup requests
// and anchors a definition tooltip in host coordinates, including the case
// where the selection happened inside a nested rendering surface with its
// own origin.
package overlay

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxSelectionWords bounds how much text a single lookup may cover.
	MaxSelectionWords = 5

	// NoticeDuration is how long a rejection notice stays on screen.
	NoticeDuration = 3 * time.Second

	// anchorGap lifts the tooltip slightly above the selection.
	anchorGap = 8
)

// Point is a position in host coordinates.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle. Left/Top are relative to whichever
// surface produced it.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Geometry abstracts the rendering surface so the translation arithmetic
// can be tested without one. SelectionRects exists because an aggregate
// bounding box can come back zero-sized when a selection wraps lines.
type Geometry interface {
	SelectionRect() Rect
	SelectionRects() []Rect
	HostFrameOffset() Point
}

// Selection is the outcome of validating and anchoring one user selection.
// When Valid is false, Reason holds a short user-facing notice.
type Selection struct {
	Text   string
	Anchor Point
	Valid  bool
	Reason string
}

// ResolveSelection validates the selected text and computes the tooltip
// anchor. The host frame offset is re-read on every call; a nested surface
// may have scrolled or resized since the last selection.
func ResolveSelection(text string, geo Geometry) Selection {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Selection{Reason: "nothing selected"}
	}
	if n := len(strings.Fields(trimmed)); n > MaxSelectionWords {
		return Selection{
			Text:   trimmed,
			Reason: fmt.Sprintf("selection is %d words, the limit is %d", n, MaxSelectionWords),
		}
	}

	rect := geo.SelectionRect()
	if rect.Width == 0 && rect.Height == 0 {
		if subs := geo.SelectionRects(); len(subs) > 0 {
			rect = subs[0]
		}
	}

	offset := geo.HostFrameOffset()
	rect.Left += offset.X
	rect.Top += offset.Y

	return Selection{
		Text:  trimmed,
		Valid: true,
		Anchor: Point{
			X: rect.Left + rect.Width/2,
			Y: rect.Top - anchorGap,
		},
	}
}

// TooltipState tracks where the overlay is in its lifecycle.
type TooltipState int

const (
	TooltipHidden TooltipState = iota
	TooltipPending
	TooltipShown
)

func (s TooltipState) String() string {
	switch s {
	case TooltipPending:
		return "pending"
	case TooltipShown:
		return "shown"
	default:
		return "hidden"
	}
}

// Tooltip is the overlay's state machine. A new Begin supersedes whatever
// was pending or shown; a completed request for a term that is no longer
// active is discarded rather than displayed.
type Tooltip struct {
	state  TooltipState
	term   string
	anchor Point
	body   string
}

func (t *Tooltip) State() TooltipState { return t.state }
func (t *Tooltip) Term() string { return t.term }
func (t *Tooltip) Anchor() Point { return t.anchor }
func (t *Tooltip) Body() string { return t.body }

// Begin moves the tooltip to Pending for a new term, dropping any previous
// pending or shown content.
func (t *Tooltip) Begin(term string, anchor Point) {
	t.state = TooltipPending
	t.term = term
	t.anchor = anchor
	t.body = ""
}

// Show installs the finished content if term still matches the active
// request. It reports whether the result was applied; a stale result
// leaves the tooltip untouched.
func (t *Tooltip) Show(term, body string) bool {
	if t.state == TooltipHidden || t.term != term {
		return false
	}
	t.state = TooltipShown
	t.body = body
	return true
}

// Close hides the tooltip and clears its content.
func (t *Tooltip) Close() {
	*t = Tooltip{}
}
