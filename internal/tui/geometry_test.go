package tui

import (
	"strings"
	"testing"

	"github.com/pkarell/termlens/internal/overlay"
)

func TestWordGeometryMergesWordsOnOneLine(t *testing.T) {
	m := newTestModel(t)
	loadFixtureDoc(t, m, "The escrow account holds funds.")

	geo := m.wordGeometry(m.words[1:3])
	rect := geo.SelectionRect()
	if rect.Top != m.words[1].line {
		t.Fatalf("rect on wrong line: %+v", rect)
	}
	if rect.Left != m.words[1].col {
		t.Fatalf("rect should start at the first word: %+v", rect)
	}
	wantWidth := m.words[2].col + len([]rune(m.words[2].text)) - m.words[1].col
	if rect.Width != wantWidth {
		t.Fatalf("rect width %d, want %d", rect.Width, wantWidth)
	}
}

func TestWordGeometryMultiLineFallsBackToSubRects(t *testing.T) {
	m := newTestModel(t)
	loadFixtureDoc(t, m, "alpha beta.\n\ngamma delta.")

	// One word from each paragraph line.
	words := []docWord{m.words[1], m.words[2]}
	if words[0].line == words[1].line {
		t.Fatalf("fixture words should sit on different lines: %+v", words)
	}
	geo := m.wordGeometry(words)
	if rect := geo.SelectionRect(); rect.Width != 0 || rect.Height != 0 {
		t.Fatalf("multi-line aggregate should be zero-size, got %+v", rect)
	}
	if subs := geo.SelectionRects(); len(subs) != 2 {
		t.Fatalf("expected one sub-rect per line, got %+v", subs)
	}
}

func TestFrameOffsetTracksScrollPosition(t *testing.T) {
	m := newTestModel(t)
	loadFixtureDoc(t, m, strings.Repeat("alpha beta gamma.\n\n", 30))
	m.viewport.Height = 5
	m.viewport.SetContent(strings.Repeat("alpha beta gamma.\n", 60))

	before := m.frameOffset()
	m.viewport.SetYOffset(m.viewport.YOffset + 7)
	after := m.frameOffset()

	if after.Y != before.Y-7 {
		t.Fatalf("offset should shift with scroll: before %+v after %+v", before, after)
	}
	if after.X != before.X {
		t.Fatalf("horizontal offset should be stable: %+v vs %+v", before, after)
	}
}

func TestSelectionAnchorUsesTranslatedCoordinates(t *testing.T) {
	m := newTestModel(t)
	loadFixtureDoc(t, m, "The escrow account holds funds.")

	word := m.words[1]
	sel := overlay.ResolveSelection(word.text, m.wordGeometry(m.words[1:2]))
	if !sel.Valid {
		t.Fatalf("selection rejected: %+v", sel)
	}
	offset := m.frameOffset()
	wantX := word.col + offset.X + len([]rune(word.text))/2
	if sel.Anchor.X != wantX {
		t.Fatalf("anchor x %d, want %d", sel.Anchor.X, wantX)
	}
	if sel.Anchor.Y >= word.line+offset.Y {
		t.Fatalf("anchor should sit above the selection: %+v", sel.Anchor)
	}
}
