package glossary

import (
	"context"
	"log"
	"strings"

	"github.com/pkarell/termlens/internal/fingerprint"
)

const (
	// ErrorDefinition is the fixed text shown when the provider cannot be
	// reached at all. Records carrying it are never cached, so the next
	// lookup retries.
	ErrorDefinition = "Unable to get definition at this time."

	fallbackDefinition = "The explanation provider returned no definition for this term."
)

// Explainer coordinates cache-first term explanation and detection. It owns
// the only call sites of the external provider; every result handed back is a
// well-formed record, never an error.
type Explainer struct {
	store  *Store
	client Client
}

// NewExplainer wires the coordinator to its cache and provider client.
// client may be nil, in which case only cached answers are served.
func NewExplainer(store *Store, client Client) *Explainer {
	return &Explainer{store: store, client: client}
}

// ProviderName reports the active provider for the status line, or "" when
// running cache-only.
func (e *Explainer) ProviderName() string {
	if e.client == nil {
		return ""
	}
	return e.client.Name()
}

// Stats exposes cache occupancy for the session meter.
func (e *Explainer) Stats() Stats {
	return e.store.Stats()
}

// ClearCache drops both cache families.
func (e *Explainer) ClearCache() {
	e.store.Clear()
}

// Explain returns an explanation for term, consulting the cache before the
// provider. A fresh cached record short-circuits with no network activity.
// Malformed provider output is downgraded to a raw-text record and cached;
// transport failure yields the fixed error record, which is not cached.
func (e *Explainer) Explain(ctx context.Context, term, docContext string) Explanation {
	if rec, ok := e.store.Explanation(term); ok {
		return rec
	}
	if e.client == nil {
		return errorRecord(term)
	}

	raw, err := e.client.Complete(ctx, buildExplainPrompt(term, docContext))
	if err != nil {
		log.Printf("[glossary] explain %q failed: %v", term, err)
		return errorRecord(term)
	}

	rec, ok := parseExplanation(term, raw)
	if !ok {
		// Cache the malformed answer anyway: re-querying a term the
		// provider cannot serve cleanly just burns money.
		definition := strings.TrimSpace(raw)
		if definition == "" {
			definition = fallbackDefinition
		}
		rec = Explanation{
			Term:       strings.TrimSpace(term),
			Definition: definition,
			Category:   CategoryOther,
		}
	}
	rec.Context = clipText(docContext, maxContextSnippetChars)
	e.store.PutExplanation(term, rec)
	stored, found := e.store.Explanation(term)
	if !found {
		return rec
	}
	return stored
}

// DetectTerms returns notable terms for text, keyed in the cache by the
// text's fingerprint. A cache hit returns the stored list unconditionally.
// Parse failures yield an uncached empty slice so detection retries later; a
// legitimately parsed array, even an empty one, is cached.
func (e *Explainer) DetectTerms(ctx context.Context, text string) []string {
	fp := fingerprint.Sum(text)
	if terms, ok := e.store.Detection(fp); ok {
		return terms
	}
	if e.client == nil {
		return nil
	}

	raw, err := e.client.Complete(ctx, buildDetectPrompt(text))
	if err != nil {
		log.Printf("[glossary] detect failed: %v", err)
		return nil
	}
	terms, ok := parseTermList(raw)
	if !ok {
		log.Printf("[glossary] detect payload unusable, not caching")
		return nil
	}
	e.store.PutDetection(fp, terms)
	return terms
}

func errorRecord(term string) Explanation {
	return Explanation{
		Term:       strings.TrimSpace(term),
		Definition: ErrorDefinition,
		Category:   CategoryOther,
	}
}
