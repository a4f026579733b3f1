package fingerprint

import "testing"

func TestSumIsDeterministic(t *testing.T) {
	t.Parallel()

	text := "The quick brown fox jumps over the lazy dog."
	if Sum(text) != Sum(text) {
		t.Fatal("same input produced different fingerprints")
	}
}

func TestSumDistinguishesSingleCharacterEdits(t *testing.T) {
	t.Parallel()

	texts := []string{
		"",
		"a",
		"b",
		"ab",
		"ba",
		"The quick brown fox jumps over the lazy dog.",
		"The quick brown fox jumps over the lazy dog!",
		"the quick brown fox jumps over the lazy dog.",
	}
	seen := map[string]string{}
	for _, text := range texts {
		key := Sum(text)
		if key == "" {
			t.Fatalf("empty fingerprint for %q", text)
		}
		if prior, dup := seen[key]; dup {
			t.Fatalf("fingerprint collision between %q and %q", prior, text)
		}
		seen[key] = text
	}
}

func TestSumEmptyInputIsStable(t *testing.T) {
	t.Parallel()

	if Sum("") != Sum("") {
		t.Fatal("empty input fingerprint is not stable")
	}
}
