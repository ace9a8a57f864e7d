package structurer

import (
	"strings"

	"github.com/veritrail/veritrail/internal/model"
)

// Confidence bounds enforced after the validation pass.
const (
	minConfidence = 0.10
	maxConfidence = 0.95
)

// Vocabulary signals used by the reliability metric.
var (
	scientificRegister = []string{
		"study", "studies", "research", "data", "evidence", "peer-reviewed",
		"clinical", "published", "according to", "statistically", "sample",
	}
	hedgingVocabulary = []string{
		"might", "may", "could", "possibly", "perhaps", "allegedly",
		"reportedly", "rumored", "supposedly", "some say", "believed to",
	}
)

// finalize applies the validation pass: independent additive and subtractive
// confidence adjustments, followed by clamping to [0.10, 0.95], and computes
// the diagnostic quality metrics.
func finalize(claim *model.StructuredClaim) {
	conf := claim.Confidence

	if claim.Subject != "" && claim.Predicate != "" && claim.Object != "" {
		conf += 0.10
	}
	if claim.HasQuantifier() {
		conf += 0.15
	}
	if len(claim.Entities) > 0 {
		conf += 0.05
	}
	if len(claim.Subject) < 3 {
		conf -= 0.10
	}
	if len(claim.Object) < 3 {
		conf -= 0.10
	}
	if claim.SemanticCoherence != nil && *claim.SemanticCoherence > coherenceThreshold {
		conf += 0.10
	}

	claim.Confidence = clamp(conf, minConfidence, maxConfidence)
	claim.Quality = computeQuality(claim)
}

// computeQuality derives the diagnostic metrics. These describe the claim;
// they are never folded into the primary confidence.
func computeQuality(claim *model.StructuredClaim) model.QualityMetrics {
	populated := 0
	for _, part := range []string{claim.Subject, claim.Predicate, claim.Object} {
		if part != "" {
			populated++
		}
	}

	specificity := 0.5
	if claim.HasQuantifier() {
		specificity += 0.2
	}
	if bonus := 0.05 * float64(claim.EntityCount()); bonus > 0 {
		if bonus > 0.2 {
			bonus = 0.2
		}
		specificity += bonus
	}
	switch claim.ClaimType {
	case model.ClaimTypeQuantified, model.ClaimTypeScientific, model.ClaimTypeOrganizational:
		specificity += 0.1
	}
	if specificity > 1.0 {
		specificity = 1.0
	}

	reliability := 0.5
	lower := strings.ToLower(claim.Subject + " " + claim.Predicate + " " + claim.Object)
	if containsAny(lower, scientificRegister) {
		reliability += 0.2
	}
	if claim.HasQuantifier() {
		reliability += 0.2
	}
	if containsAny(lower, hedgingVocabulary) {
		reliability -= 0.2
	}
	reliability = clamp(reliability, 0.1, 1.0)

	return model.QualityMetrics{
		Completeness: float64(populated) / 3,
		Specificity:  specificity,
		Reliability:  reliability,
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
