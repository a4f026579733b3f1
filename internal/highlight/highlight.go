// Package highlight rewrites document text so that known glossary terms
// become stable placeholder tokens the rendering layer can style and
// target individually.
package highlight

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span records one matched term occurrence. StartIndex and EndIndex are a
// half-open byte range into the original, pre-substitution document.
type Span struct {
	Term        string
	StartIndex  int
	EndIndex    int
	Placeholder string
}

// Result pairs the placeholder-substituted text with the side table that
// maps each placeholder back to its source term and position.
type Result struct {
	Rewritten string
	Spans     []Span
}

// Highlight matches every candidate term against doc, longest term first,
// so that a term which is a substring of another ("API" inside "REST API")
// never steals the longer term's occurrence. Matching is case-insensitive
// and word-boundary aware. Each matched region is claimed exactly once;
// returned spans never overlap and are ordered by position.
func Highlight(doc string, candidateTerms []string) Result {
	terms := dedupeTerms(candidateTerms)
	if len(terms) == 0 || doc == "" {
		return Result{Rewritten: doc}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	var spans []Span
	claimed := make([]span, 0, 8)
	for _, term := range terms {
		for _, pos := range occurrences(doc, term, claimed) {
			claimed = append(claimed, pos)
			spans = append(spans, Span{
				Term:        term,
				StartIndex:  pos.start,
				EndIndex:    pos.end,
				Placeholder: fmt.Sprintf("[[T%03d]]", len(spans)),
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].StartIndex < spans[j].StartIndex
	})
	return Result{Rewritten: substitute(doc, spans), Spans: spans}
}

type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func dedupeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// occurrences finds every case-insensitive, word-bounded match of term in
// doc that does not touch an already claimed region. Scanning the original
// document keeps all indexes in original coordinates regardless of how
// earlier substitutions changed the working text's length.
func occurrences(doc, term string, claimed []span) []span {
	n := len(term)
	var out []span
	for i := 0; i+n <= len(doc); {
		if !strings.EqualFold(doc[i:i+n], term) {
			_, width := utf8.DecodeRuneInString(doc[i:])
			i += width
			continue
		}
		candidate := span{start: i, end: i + n}
		if wordBounded(doc, term, candidate) && !touchesClaimed(candidate, claimed) && !touchesClaimed(candidate, out) {
			out = append(out, candidate)
			i = candidate.end
			continue
		}
		_, width := utf8.DecodeRuneInString(doc[i:])
		i += width
	}
	return out
}

func touchesClaimed(candidate span, claimed []span) bool {
	for _, c := range claimed {
		if candidate.overlaps(c) {
			return true
		}
	}
	return false
}

// wordBounded rejects matches embedded inside a larger word, so "API"
// never matches the middle of "RAPID". The check on a side is skipped when
// the term itself starts or ends with a non-word rune (terms like "C++").
func wordBounded(doc, term string, s span) bool {
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	if isWordRune(first) && s.start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(doc[:s.start])
		if isWordRune(prev) {
			return false
		}
	}
	if isWordRune(last) && s.end < len(doc) {
		next, _ := utf8.DecodeRuneInString(doc[s.end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func substitute(doc string, spans []Span) string {
	if len(spans) == 0 {
		return doc
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(doc[prev:s.StartIndex])
		b.WriteString(s.Placeholder)
		prev = s.EndIndex
	}
	b.WriteString(doc[prev:])
	return b.String()
}
