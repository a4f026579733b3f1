// Package ingest loads reader documents from disk and parses the light
// markup convention they use: "# ", "## " and "### " heading prefixes, a
// lone "---" section break, and **...** emphasis.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Load reads the document at path and returns its plain-text payload.
// Markdown and plain text are returned as-is; PDF content is extracted and
// whitespace-normalized.
func Load(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".txt", ".md", ".markdown", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}

	fullText := extraneousWhitespace.ReplaceAllString(builder.String(), " ")
	return strings.TrimSpace(fullText), nil
}

// BlockKind discriminates the structural blocks of a parsed document.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading1
	BlockHeading2
	BlockHeading3
	BlockRule
)

// Block is one structural unit of the document. Text holds the payload
// with the markup prefix stripped; it is empty for a rule.
type Block struct {
	Kind BlockKind
	Text string
}

// Blocks splits text into headings, section breaks and paragraphs.
// Consecutive non-blank lines merge into a single paragraph, separated by
// blank lines the way the source files are written.
func Blocks(text string) []Block {
	var blocks []Block
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: strings.Join(para, " ")})
			para = para[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case trimmed == "---":
			flush()
			blocks = append(blocks, Block{Kind: BlockRule})
		case strings.HasPrefix(trimmed, "### "):
			flush()
			blocks = append(blocks, Block{Kind: BlockHeading3, Text: strings.TrimPrefix(trimmed, "### ")})
		case strings.HasPrefix(trimmed, "## "):
			flush()
			blocks = append(blocks, Block{Kind: BlockHeading2, Text: strings.TrimPrefix(trimmed, "## ")})
		case strings.HasPrefix(trimmed, "# "):
			flush()
			blocks = append(blocks, Block{Kind: BlockHeading1, Text: strings.TrimPrefix(trimmed, "# ")})
		default:
			para = append(para, trimmed)
		}
	}
	flush()
	return blocks
}

// Segment is a run of paragraph text, either emphasized or plain.
type Segment struct {
	Text string
	Bold bool
}

// Segments splits a block's text on **...** emphasis markers. An unpaired
// opener is treated as literal text.
func Segments(text string) []Segment {
	var segs []Segment
	for len(text) > 0 {
		open := strings.Index(text, "**")
		if open < 0 {
			segs = append(segs, Segment{Text: text})
			break
		}
		end := strings.Index(text[open+2:], "**")
		if end < 0 {
			segs = append(segs, Segment{Text: text})
			break
		}
		if open > 0 {
			segs = append(segs, Segment{Text: text[:open]})
		}
		segs = append(segs, Segment{Text: text[open+2 : open+2+end], Bold: true})
		text = text[open+2+end+2:]
	}
	return segs
}

// PlainText strips the markup convention from text, leaving only the
// payload the highlighter and detector should see.
func PlainText(text string) string {
	var b strings.Builder
	for _, block := range Blocks(text) {
		if block.Kind == BlockRule {
			continue
		}
		for _, seg := range Segments(block.Text) {
			b.WriteString(seg.Text)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
