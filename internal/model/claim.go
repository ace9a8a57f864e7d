package model

// ClaimType categorizes the structural shape of an extracted claim
type ClaimType string

const (
	ClaimTypeQuantified     ClaimType = "quantified"     // Subject + verb + object + numeric quantifier
	ClaimTypeComparative    ClaimType = "comparative"    // Subject compared against a target
	ClaimTypeScientific     ClaimType = "scientific"     // Research actor reporting a finding
	ClaimTypeOrganizational ClaimType = "organizational" // Named organization announcing something
	ClaimTypeGeneral        ClaimType = "general"        // Plain subject-copula-object statement
	ClaimTypeFragment       ClaimType = "fragment"       // Too short to decompose
	ClaimTypeFallback       ClaimType = "fallback"       // Heuristic split, no pattern matched
)

// StructuredClaim is the subject/predicate/object decomposition of a
// natural-language assertion, with auxiliary entities and a confidence score.
// Subject, Predicate and Object are never empty: the fallback extraction
// path guarantees a value for any input, including the empty string.
type StructuredClaim struct {
	Subject    string    `json:"subject"`
	Predicate  string    `json:"predicate"`
	Object     string    `json:"object"`
	Quantifier string    `json:"quantifier,omitempty"` // e.g. "40%", "3 times"
	ClaimType  ClaimType `json:"claim_type"`

	// Confidence is clamped to [0.1, 0.95] after the validation pass.
	Confidence float64 `json:"confidence"`

	// Entities maps a category (organizations, people, numbers, percentages,
	// measurements, dates, technology, medical) to terms found in the text,
	// deduplicated, in order of first occurrence.
	Entities map[string][]string `json:"entities,omitempty"`

	// ExtractionMethod names the pattern that produced the decomposition
	// (e.g. "pattern:quantified", "fallback:verb-split").
	ExtractionMethod string `json:"extraction_method"`

	// SemanticCoherence is the oracle-computed coherence score, nil when the
	// semantic oracle was unavailable or disabled.
	SemanticCoherence *float64 `json:"semantic_coherence,omitempty"`

	// Quality holds diagnostic metrics; these never feed back into Confidence.
	Quality QualityMetrics `json:"quality"`
}

// QualityMetrics are diagnostic measures computed during the validation pass.
// They are reported for transparency and are not folded into Confidence.
type QualityMetrics struct {
	Completeness float64 `json:"completeness"` // Fraction of {subject,predicate,object} populated
	Specificity  float64 `json:"specificity"`  // 0.5 base, boosted by quantifier/entities/type, cap 1.0
	Reliability  float64 `json:"reliability"`  // 0.5 base, scientific register +, hedging -, in [0.1,1.0]
}

// HasQuantifier reports whether a numeric quantifier was extracted.
func (c *StructuredClaim) HasQuantifier() bool {
	return c.Quantifier != ""
}

// EntityCount returns the total number of extracted entities across categories.
func (c *StructuredClaim) EntityCount() int {
	n := 0
	for _, terms := range c.Entities {
		n += len(terms)
	}
	return n
}
