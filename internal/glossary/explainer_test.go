package glossary

import (
	"context"
	"errors"
	"testing"

	"github.com/pkarell/termlens/internal/fingerprint"
)

type scriptedClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (c *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func (c *scriptedClient) Name() string { return "scripted" }

func newTestExplainer(client Client) *Explainer {
	store := NewStore(&memoryStorage{})
	store.Load()
	return NewExplainer(store, client)
}

func TestExplainIsIdempotentPerTerm(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: `{"term":"API","definition":"A programming interface.","category":"Technology","examples":["REST"]}`}
	explainer := newTestExplainer(client)
	ctx := context.Background()

	first := explainer.Explain(ctx, "API", "Our REST API is stable.")
	second := explainer.Explain(ctx, "api ", "different context, same term")

	if client.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", client.calls)
	}
	if first.Definition != second.Definition || first.Category != second.Category {
		t.Fatalf("cache hit diverged: %+v vs %+v", first, second)
	}
	if first.Category != CategoryTechnology {
		t.Fatalf("unexpected category: %s", first.Category)
	}
}

func TestExplainCachesMalformedProviderOutput(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: "An API is how programs talk to each other."}
	explainer := newTestExplainer(client)
	ctx := context.Background()

	rec := explainer.Explain(ctx, "API", "")
	if rec.Definition != "An API is how programs talk to each other." {
		t.Fatalf("fallback should carry the raw text, got %q", rec.Definition)
	}
	if rec.Category != CategoryOther {
		t.Fatalf("fallback category must be Other, got %s", rec.Category)
	}

	explainer.Explain(ctx, "API", "")
	if client.calls != 1 {
		t.Fatalf("malformed output must still be cache-worthy, got %d calls", client.calls)
	}
}

func TestExplainDoesNotCacheTransportFailures(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{err: errors.New("connection refused")}
	explainer := newTestExplainer(client)
	ctx := context.Background()

	rec := explainer.Explain(ctx, "API", "")
	if rec.Definition != ErrorDefinition {
		t.Fatalf("expected the fixed error record, got %q", rec.Definition)
	}

	// Provider recovers; the term must be retried, not remembered as broken.
	client.err = nil
	client.response = `{"term":"API","definition":"A programming interface.","category":"Technology"}`
	rec = explainer.Explain(ctx, "API", "")
	if rec.Definition != "A programming interface." {
		t.Fatalf("transient failure was cached: %q", rec.Definition)
	}
	if client.calls != 2 {
		t.Fatalf("expected retry after failure, got %d calls", client.calls)
	}
}

func TestExplainEmptyProviderOutputGetsPlaceholder(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: "   "}
	explainer := newTestExplainer(client)

	rec := explainer.Explain(context.Background(), "API", "")
	if rec.Definition != fallbackDefinition {
		t.Fatalf("expected placeholder definition, got %q", rec.Definition)
	}
}

func TestExplainWithoutClientReturnsErrorRecord(t *testing.T) {
	t.Parallel()

	explainer := newTestExplainer(nil)
	rec := explainer.Explain(context.Background(), "API", "")
	if rec.Definition != ErrorDefinition {
		t.Fatalf("cache-only miss should produce the error record, got %q", rec.Definition)
	}
}

func TestExplainBoundsStoredContextSnippet(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: `{"term":"API","definition":"x.","category":"Technology"}`}
	explainer := newTestExplainer(client)

	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'a'
	}
	rec := explainer.Explain(context.Background(), "API", string(long))
	if len(rec.Context) > maxContextSnippetChars {
		t.Fatalf("context snippet not bounded: %d bytes", len(rec.Context))
	}
}

func TestDetectTermsCachesByFingerprint(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: `["escrow","lien"]`}
	explainer := newTestExplainer(client)
	ctx := context.Background()
	text := "The escrow account and the lien were both recorded."

	first := explainer.DetectTerms(ctx, text)
	second := explainer.DetectTerms(ctx, text)
	if client.calls != 1 {
		t.Fatalf("expected one provider call, got %d", client.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected term lists: %v / %v", first, second)
	}

	// A different document fingerprints differently and misses.
	explainer.DetectTerms(ctx, text+" Appendix.")
	if client.calls != 2 {
		t.Fatalf("distinct text should miss the cache, got %d calls", client.calls)
	}
}

func TestDetectTermsDoesNotCacheUnparseableOutput(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: "I found escrow and lien."}
	explainer := newTestExplainer(client)
	ctx := context.Background()

	if terms := explainer.DetectTerms(ctx, "doc"); len(terms) != 0 {
		t.Fatalf("unparseable output should yield no terms, got %v", terms)
	}
	explainer.DetectTerms(ctx, "doc")
	if client.calls != 2 {
		t.Fatalf("failed detection must be retried, got %d calls", client.calls)
	}
}

func TestDetectTermsCachesLegitimateEmptyArray(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: "[]"}
	explainer := newTestExplainer(client)
	ctx := context.Background()

	explainer.DetectTerms(ctx, "doc")
	explainer.DetectTerms(ctx, "doc")
	if client.calls != 1 {
		t.Fatalf("a legitimate empty array is cacheable, got %d calls", client.calls)
	}
}

func TestDetectTermsSendsBoundedContext(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: "[]"}
	explainer := newTestExplainer(client)

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'b'
	}
	explainer.DetectTerms(context.Background(), string(long))
	if len(client.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(client.prompts))
	}
	if len(client.prompts[0]) > maxDetectContextChars+500 {
		t.Fatalf("detection prompt should clip the document, got %d bytes", len(client.prompts[0]))
	}

	// The full text still keys the cache, not just the clipped prefix.
	if _, ok := explainer.store.Detection(fingerprint.Sum(string(long))); !ok {
		t.Fatal("detection should be cached under the full-text fingerprint")
	}
}
