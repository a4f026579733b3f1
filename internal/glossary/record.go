package glossary

import (
	"strings"
	"time"
)

// Category buckets an explained term. The provider is asked to pick from the
// closed set; anything it invents collapses to CategoryOther.
type Category string

const (
	CategoryFinance    Category = "Finance"
	CategoryTechnology Category = "Technology"
	CategoryLegal      Category = "Legal"
	CategoryMedical    Category = "Medical"
	CategoryBusiness   Category = "Business"
	CategoryOther      Category = "Other"
	CategoryError      Category = "Error"
)

// Explanation is the cached definition for one normalized term.
type Explanation struct {
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Category   Category  `json:"category"`
	Examples   []string  `json:"examples,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Context    string    `json:"context,omitempty"`
}

// Detection is the cached list of notable terms for one document fingerprint.
type Detection struct {
	Fingerprint string    `json:"fingerprint"`
	Terms       []string  `json:"terms"`
	CachedAt    time.Time `json:"cachedAt"`
}

// NormalizeTerm produces the case-insensitive, whitespace-trimmed cache key
// shared by the store and the coordinator.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func normalizeCategory(value string) Category {
	switch Category(strings.TrimSpace(value)) {
	case CategoryFinance, CategoryTechnology, CategoryLegal, CategoryMedical, CategoryBusiness, CategoryOther:
		return Category(strings.TrimSpace(value))
	default:
		return CategoryOther
	}
}
