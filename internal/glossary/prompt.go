package glossary

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildExplainPrompt(term, docContext string) string {
	var b strings.Builder
	b.WriteString("You are a glossary assistant for readers of long documents.\n")
	b.WriteString("Explain the term below in plain language for a non-expert.\n")
	b.WriteString(`Return ONLY a JSON object shaped as {"term":"","definition":"","category":"","examples":[""]}` + "\n")
	b.WriteString("where category is exactly one of Finance, Technology, Legal, Medical, Business, Other.\n")
	b.WriteString("Keep the definition to 2-3 sentences and give at most 2 short examples.\n\n")
	b.WriteString("Term: " + strings.TrimSpace(term) + "\n")
	if snippet := clipText(docContext, maxContextSnippetChars); snippet != "" {
		b.WriteString("\nIt appeared in this passage:\n" + snippet + "\n")
	}
	return b.String()
}

func buildDetectPrompt(text string) string {
	return fmt.Sprintf(
		"You are a glossary assistant for readers of long documents.\n"+
			"List the 5-10 most notable technical or specialist terms a general reader\n"+
			"would want explained, taken verbatim from the text below.\n"+
			`Return ONLY a JSON array of strings such as ["term","term"].`+"\n\n"+
			"Text:\n%s", clipText(text, maxDetectContextChars),
	)
}

// extractJSONPayload strips any surrounding code-fence markup and isolates
// the first JSON object or array in raw. The boolean reports whether a
// candidate payload was found at all; callers still have to unmarshal it.
func extractJSONPayload(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
			raw = raw[idx+1:]
		}
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}
	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start, closer := objStart, "}"
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start, closer = arrStart, "]"
	}
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(raw, closer)
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

type explanationPayload struct {
	Term       string   `json:"term"`
	Definition string   `json:"definition"`
	Category   string   `json:"category"`
	Examples   []string `json:"examples"`
}

// parseExplanation turns raw provider text into a record. The boolean
// reports whether the structured parse succeeded; on failure the caller
// falls back to a raw-text record.
func parseExplanation(term, raw string) (Explanation, bool) {
	payload, ok := extractJSONPayload(raw)
	if !ok {
		return Explanation{}, false
	}
	var parsed explanationPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return Explanation{}, false
	}
	definition := strings.TrimSpace(parsed.Definition)
	if definition == "" {
		return Explanation{}, false
	}
	name := strings.TrimSpace(parsed.Term)
	if name == "" {
		name = strings.TrimSpace(term)
	}
	return Explanation{
		Term:       name,
		Definition: definition,
		Category:   normalizeCategory(parsed.Category),
		Examples:   sanitizeList(parsed.Examples),
	}, true
}

// parseTermList turns raw provider text into a detected-term list. The
// boolean distinguishes "provider legitimately returned an array" (cacheable,
// even when empty) from "nothing parseable came back" (not cacheable).
func parseTermList(raw string) ([]string, bool) {
	payload, ok := extractJSONPayload(raw)
	if !ok {
		return nil, false
	}
	var terms []string
	if err := json.Unmarshal([]byte(payload), &terms); err == nil {
		return sanitizeList(terms), true
	}
	var wrapper struct {
		Terms []string `json:"terms"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err == nil && wrapper.Terms != nil {
		return sanitizeList(wrapper.Terms), true
	}
	return nil, false
}

func sanitizeList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = whitespaceRe.ReplaceAllString(strings.TrimSpace(item), " ")
		if item == "" {
			continue
		}
		cleaned = append(cleaned, item)
	}
	return cleaned
}
