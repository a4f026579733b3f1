// Package fingerprint derives compact cache-partition keys from document text.
package fingerprint

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Sum returns a deterministic digest of text, sensitive to every character.
// The result is a best-effort partition key for cache lookups, not a
// cryptographic identity. Empty input maps to a stable key.
func Sum(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 36)
}
