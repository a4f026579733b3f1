package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPlainTextAndMarkdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\nBody."), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !strings.Contains(text, "# Title") {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestLoadRejectsUnknownExtensions(t *testing.T) {
	t.Parallel()

	if _, err := Load("report.docx"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestBlocksParsesMarkupConvention(t *testing.T) {
	t.Parallel()

	text := "# Guide\n\n## Terms\nFirst line\nsecond line.\n\n---\n\n### Fine print\nDone."
	blocks := Blocks(text)

	want := []Block{
		{Kind: BlockHeading1, Text: "Guide"},
		{Kind: BlockHeading2, Text: "Terms"},
		{Kind: BlockParagraph, Text: "First line second line."},
		{Kind: BlockRule},
		{Kind: BlockHeading3, Text: "Fine print"},
		{Kind: BlockParagraph, Text: "Done."},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(blocks), blocks)
	}
	for i, b := range blocks {
		if b != want[i] {
			t.Fatalf("block %d: got %+v, want %+v", i, b, want[i])
		}
	}
}

func TestBlocksEmptyInput(t *testing.T) {
	t.Parallel()

	if blocks := Blocks(""); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %+v", blocks)
	}
}

func TestSegmentsSplitsEmphasis(t *testing.T) {
	t.Parallel()

	segs := Segments("An **escrow** account holds **funds**.")
	want := []Segment{
		{Text: "An "},
		{Text: "escrow", Bold: true},
		{Text: " account holds "},
		{Text: "funds", Bold: true},
		{Text: "."},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %+v", len(want), segs)
	}
	for i, s := range segs {
		if s != want[i] {
			t.Fatalf("segment %d: got %+v, want %+v", i, s, want[i])
		}
	}
}

func TestSegmentsUnpairedMarkerIsLiteral(t *testing.T) {
	t.Parallel()

	segs := Segments("a ** b")
	if len(segs) != 1 || segs[0].Bold || segs[0].Text != "a ** b" {
		t.Fatalf("unpaired marker mishandled: %+v", segs)
	}
}

func TestPlainTextStripsMarkup(t *testing.T) {
	t.Parallel()

	got := PlainText("# Title\n\nAn **escrow** account.\n\n---\n\nEnd.")
	if strings.ContainsAny(got, "#*") {
		t.Fatalf("markup survived: %q", got)
	}
	if !strings.Contains(got, "An escrow account.") {
		t.Fatalf("payload damaged: %q", got)
	}
}
