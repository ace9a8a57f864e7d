package structurer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/semantic"
)

// coherenceThreshold is the coherence above which the one-time confidence
// boost applies.
const coherenceThreshold = 0.7

// Structurer converts raw text into a structured claim through an ordered
// cascade of extraction patterns, optional semantic enrichment, and a final
// validation pass. Structure never fails: every input, including the empty
// string and symbol-only text, has a defined path to a valid claim.
type Structurer struct {
	oracle semantic.Oracle // nil disables enrichment
}

// NewStructurer creates a structurer. A nil oracle disables semantic
// enrichment; everything else still runs.
func NewStructurer(oracle semantic.Oracle) *Structurer {
	return &Structurer{oracle: oracle}
}

// Structure extracts a structured claim from raw text.
func (s *Structurer) Structure(ctx context.Context, rawText string) model.StructuredClaim {
	text := strings.TrimSpace(rawText)

	var claim model.StructuredClaim
	if p, ex, ok := matchPattern(text); ok {
		claim = model.StructuredClaim{
			Subject:          ex.Subject,
			Predicate:        ex.Predicate,
			Object:           ex.Object,
			Quantifier:       ex.Quantifier,
			ClaimType:        p.claimType,
			Confidence:       p.baseConfidence,
			ExtractionMethod: "pattern:" + p.name,
		}
	} else {
		claim = fallbackClaim(text)
	}

	// Entity extraction always runs over the full text, independent of
	// which pattern matched.
	claim.Entities = ExtractEntities(text)

	s.enrich(ctx, text, &claim)
	finalize(&claim)

	return claim
}

// enrich computes semantic coherence between the extracted subject/object and
// the full text. Any oracle failure skips enrichment entirely; it never fails
// the parse.
func (s *Structurer) enrich(ctx context.Context, text string, claim *model.StructuredClaim) {
	if s.oracle == nil || text == "" {
		return
	}

	fullVec, err := s.oracle.Embed(ctx, text)
	if err != nil {
		slog.Debug("oracle enrichment skipped", "stage", "full_text", "error", err)
		return
	}
	subjVec, err := s.oracle.Embed(ctx, claim.Subject)
	if err != nil {
		slog.Debug("oracle enrichment skipped", "stage", "subject", "error", err)
		return
	}
	objVec, err := s.oracle.Embed(ctx, claim.Object)
	if err != nil {
		slog.Debug("oracle enrichment skipped", "stage", "object", "error", err)
		return
	}

	coherence := semantic.Coherence(fullVec, subjVec, objVec)
	claim.SemanticCoherence = &coherence

	// One-time boost, applied before the validation pass.
	if coherence > coherenceThreshold {
		claim.Confidence += 0.10
	}
}

// Auxiliary and modal verbs recognized by the fallback split.
var fallbackVerbs = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"has": true, "have": true, "had": true,
	"will": true, "would": true, "can": true, "could": true,
	"shall": true, "should": true, "may": true, "might": true,
	"must": true, "does": true, "do": true, "did": true,
}

// fallbackClaim guarantees a valid claim for text no pattern matched.
func fallbackClaim(text string) model.StructuredClaim {
	tokens := strings.Fields(text)

	if len(tokens) < 3 {
		subject := text
		if subject == "" {
			subject = "unknown"
		}
		return model.StructuredClaim{
			Subject:          subject,
			Predicate:        "mentions",
			Object:           "topic",
			ClaimType:        model.ClaimTypeFragment,
			Confidence:       0.30,
			ExtractionMethod: "fallback:fragment",
		}
	}

	// Split around the first auxiliary/modal verb that has text on both
	// sides, or the midpoint if none is found.
	split, method := -1, "fallback:verb-split"
	for i := 1; i < len(tokens)-1; i++ {
		if fallbackVerbs[strings.ToLower(tokens[i])] {
			split = i
			break
		}
	}
	if split < 0 {
		split = len(tokens) / 2
		method = "fallback:midpoint"
	}

	return model.StructuredClaim{
		Subject:          strings.Join(tokens[:split], " "),
		Predicate:        tokens[split],
		Object:           strings.Join(tokens[split+1:], " "),
		ClaimType:        model.ClaimTypeFallback,
		Confidence:       0.40,
		ExtractionMethod: method,
	}
}
