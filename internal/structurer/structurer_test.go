package structurer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/veritrail/veritrail/internal/model"
)

// fakeOracle returns a fixed vector for every input, so coherence is always 1.
type fakeOracle struct {
	vec []float32
	err error
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeOracle) IsAvailable(_ context.Context) bool { return f.err == nil }

func structure(t *testing.T, text string) model.StructuredClaim {
	t.Helper()
	return NewStructurer(nil).Structure(context.Background(), text)
}

func TestStructure_Quantified(t *testing.T) {
	claim := structure(t, "Company X increased output by 40%")

	if claim.ClaimType != model.ClaimTypeQuantified {
		t.Errorf("ClaimType = %s, want quantified", claim.ClaimType)
	}
	if claim.Subject != "Company X" {
		t.Errorf("Subject = %q", claim.Subject)
	}
	if claim.Predicate != "increased" {
		t.Errorf("Predicate = %q", claim.Predicate)
	}
	if claim.Quantifier != "40%" {
		t.Errorf("Quantifier = %q, want 40%%", claim.Quantifier)
	}
	if claim.ExtractionMethod != "pattern:quantified" {
		t.Errorf("ExtractionMethod = %q", claim.ExtractionMethod)
	}
	if claim.Confidence < 0.9 {
		t.Errorf("Confidence = %.2f, want >= 0.9", claim.Confidence)
	}
}

func TestStructure_QuantifierBoundaries(t *testing.T) {
	tests := []struct {
		name           string
		in             string
		wantQuantifier string
	}{
		{"percent sign at end of input", "Company X increased output by 40%", "40%"},
		{"percent sign before punctuation", "Company X increased output by 40%.", "40%"},
		{"percent sign mid-sentence", "Company X increased output by 40% in March 2024", "40%"},
		{"percent word", "Revenue increased by 12 percent last year", "12 percent"},
		{"times multiplier", "Output tripled to 3 times the baseline", "3 times"},
		{"fold multiplier", "Sales grew 2.5-fold during the quarter", "2.5-fold"},
		{"decimal percentage", "Margins improved by 3.5%", "3.5%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := structure(t, tt.in)
			if claim.ClaimType != model.ClaimTypeQuantified {
				t.Fatalf("ClaimType = %s, want quantified", claim.ClaimType)
			}
			if claim.Quantifier != tt.wantQuantifier {
				t.Errorf("Quantifier = %q, want %q", claim.Quantifier, tt.wantQuantifier)
			}
		})
	}

	// Word quantifiers still need their own boundary: "times" inside a longer
	// word is not a multiplier.
	claim := structure(t, "The system dropped 5 timestamps from the log")
	if claim.ClaimType == model.ClaimTypeQuantified {
		t.Errorf("ClaimType = quantified for %q, want a non-quantified parse", "timestamps")
	}
}

func TestStructure_Comparative(t *testing.T) {
	claim := structure(t, "Drug A is more effective than Drug B")

	if claim.ClaimType != model.ClaimTypeComparative {
		t.Errorf("ClaimType = %s, want comparative", claim.ClaimType)
	}
	if claim.Subject != "Drug A" {
		t.Errorf("Subject = %q", claim.Subject)
	}
	if claim.Predicate != "is more effective than" {
		t.Errorf("Predicate = %q", claim.Predicate)
	}
	if claim.Object != "Drug B" {
		t.Errorf("Object = %q", claim.Object)
	}
}

func TestStructure_Scientific(t *testing.T) {
	claim := structure(t, "Researchers at Stanford found that coffee reduces mortality")

	if claim.ClaimType != model.ClaimTypeScientific {
		t.Errorf("ClaimType = %s, want scientific", claim.ClaimType)
	}
	if claim.Subject != "Researchers at Stanford" {
		t.Errorf("Subject = %q", claim.Subject)
	}
	if claim.Predicate != "found" {
		t.Errorf("Predicate = %q", claim.Predicate)
	}
	if claim.Object != "coffee reduces mortality" {
		t.Errorf("Object = %q", claim.Object)
	}
}

func TestStructure_Organizational(t *testing.T) {
	claim := structure(t, "Pfizer announced a new vaccine partnership")

	if claim.ClaimType != model.ClaimTypeOrganizational {
		t.Errorf("ClaimType = %s, want organizational", claim.ClaimType)
	}
	if claim.Subject != "Pfizer" {
		t.Errorf("Subject = %q", claim.Subject)
	}
	if claim.Predicate != "announced" {
		t.Errorf("Predicate = %q", claim.Predicate)
	}
}

func TestStructure_General(t *testing.T) {
	claim := structure(t, "The sky is blue")

	if claim.ClaimType != model.ClaimTypeGeneral {
		t.Errorf("ClaimType = %s, want general", claim.ClaimType)
	}
	if claim.Subject != "The sky" || claim.Predicate != "is" || claim.Object != "blue" {
		t.Errorf("Triple = (%q, %q, %q)", claim.Subject, claim.Predicate, claim.Object)
	}
	// 0.60 base plus the complete-triple adjustment, nothing else applies.
	if math.Abs(claim.Confidence-0.70) > 1e-9 {
		t.Errorf("Confidence = %.2f, want 0.70", claim.Confidence)
	}
}

func TestStructure_CascadePrecedence(t *testing.T) {
	// Contains a copula the general pattern would match, but the quantified
	// pattern has priority.
	claim := structure(t, "Revenue grew by 25% and the company is profitable")
	if claim.ClaimType != model.ClaimTypeQuantified {
		t.Errorf("ClaimType = %s, want quantified to win the cascade", claim.ClaimType)
	}
}

func TestStructure_FallbackFragment(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantSubject string
	}{
		{"empty input", "", "unknown"},
		{"single token", "hello", "hello"},
		{"two tokens", "hello world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := structure(t, tt.in)
			if claim.ClaimType != model.ClaimTypeFragment {
				t.Errorf("ClaimType = %s, want fragment", claim.ClaimType)
			}
			if claim.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", claim.Subject, tt.wantSubject)
			}
			if claim.Predicate != "mentions" || claim.Object != "topic" {
				t.Errorf("Placeholder triple = (%q, %q)", claim.Predicate, claim.Object)
			}
			if claim.ExtractionMethod != "fallback:fragment" {
				t.Errorf("ExtractionMethod = %q", claim.ExtractionMethod)
			}
		})
	}
}

func TestStructure_FallbackVerbSplit(t *testing.T) {
	claim := structure(t, "Nobody would ever guess the outcome tomorrow")

	if claim.ClaimType != model.ClaimTypeFallback {
		t.Errorf("ClaimType = %s, want fallback", claim.ClaimType)
	}
	if claim.ExtractionMethod != "fallback:verb-split" {
		t.Errorf("ExtractionMethod = %q", claim.ExtractionMethod)
	}
	if claim.Subject != "Nobody" || claim.Predicate != "would" {
		t.Errorf("Split = (%q, %q, %q)", claim.Subject, claim.Predicate, claim.Object)
	}
}

func TestStructure_FallbackMidpoint(t *testing.T) {
	claim := structure(t, "@@@ ### $$$ ^^^ &&&")

	if claim.ClaimType != model.ClaimTypeFallback {
		t.Errorf("ClaimType = %s, want fallback", claim.ClaimType)
	}
	if claim.ExtractionMethod != "fallback:midpoint" {
		t.Errorf("ExtractionMethod = %q", claim.ExtractionMethod)
	}
	if claim.Subject == "" || claim.Predicate == "" || claim.Object == "" {
		t.Errorf("Triple must be non-empty, got (%q, %q, %q)", claim.Subject, claim.Predicate, claim.Object)
	}
}

func TestStructure_ConfidenceBounds(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"@ @ @",
		"Company X increased output by 40%",
		"Researchers found that peer-reviewed data shows the vaccine reduced infections by 95% in clinical trials during 2023",
		"%%% ^^^ @@@",
		"这是一个未经处理的断言",
	}

	for _, in := range inputs {
		claim := structure(t, in)
		if claim.Confidence < 0.10 || claim.Confidence > 0.95 {
			t.Errorf("Input %q: confidence %.2f outside [0.10, 0.95]", in, claim.Confidence)
		}
		if claim.Subject == "" || claim.Predicate == "" || claim.Object == "" {
			t.Errorf("Input %q: incomplete triple (%q, %q, %q)", in, claim.Subject, claim.Predicate, claim.Object)
		}
	}
}

func TestStructure_OracleBoost(t *testing.T) {
	oracle := &fakeOracle{vec: []float32{0.1, 0.2, 0.3}}
	claim := NewStructurer(oracle).Structure(context.Background(), "The sky is blue")

	if claim.SemanticCoherence == nil {
		t.Fatal("Expected coherence to be recorded")
	}
	if math.Abs(*claim.SemanticCoherence-1.0) > 1e-9 {
		t.Errorf("Coherence = %.2f, want 1.0 for identical vectors", *claim.SemanticCoherence)
	}
	// 0.60 base + 0.10 enrichment boost + 0.10 complete triple + 0.10
	// coherence adjustment.
	if math.Abs(claim.Confidence-0.90) > 1e-9 {
		t.Errorf("Confidence = %.2f, want 0.90", claim.Confidence)
	}
}

func TestStructure_OracleFailureIsNonFatal(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("provider unreachable")}
	claim := NewStructurer(oracle).Structure(context.Background(), "The sky is blue")

	if claim.SemanticCoherence != nil {
		t.Error("Coherence should be absent when the oracle fails")
	}
	if math.Abs(claim.Confidence-0.70) > 1e-9 {
		t.Errorf("Confidence = %.2f, want unenriched 0.70", claim.Confidence)
	}
}
