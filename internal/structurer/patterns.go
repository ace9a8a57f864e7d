package structurer

import (
	"regexp"
	"strings"

	"github.com/veritrail/veritrail/internal/model"
)

// extraction is the raw output of one pattern extractor.
type extraction struct {
	Subject    string
	Predicate  string
	Object     string
	Quantifier string
}

// pattern pairs a match predicate with its extractor. Patterns are evaluated
// in table order, first match wins, so precedence can be changed or tested
// without touching control flow.
type pattern struct {
	name           string
	claimType      model.ClaimType
	baseConfidence float64
	re             *regexp.Regexp
	extract        func(m []string) (extraction, bool)
}

// The trailing boundary lives inside each word alternative: "%" is a non-word
// character, so a pattern-level \b after the group can never match a
// percentage quantifier at end of input or before punctuation.
const quantifierExpr = `\d+(?:[.,]\d+)?\s*(?:%|percent(?:age\s+points)?\b|times\b|x\b|-?fold\b)`

var (
	reQuantified = regexp.MustCompile(`(?i)^(.{1,150}?)\s+(increased|decreased|grew|rose|fell|dropped|reduced|improved|boosted|raised|lowered|cut|doubled|tripled|expanded|shrank|gained|lost)\b\s*(.*?)\s*\b(?:by|to)?\s*(` + quantifierExpr + `)`)

	reComparative = regexp.MustCompile(`(?i)^(.{1,150}?)\s+(is|are|was|were)\s+((?:more|less|fewer)\s+\w+|\w+(?:er|ier))\s*(.{0,80}?)\s*\b(?:than|compared\s+to)\s+(.+)$`)

	reScientific = regexp.MustCompile(`(?i)^((?:a\s+|the\s+|new\s+|recent\s+)*(?:researchers?|scientists?|stud(?:y|ies)|experts?|analysts?|physicians?|economists?|report|survey|trial)\b.{0,80}?)\s+(found|finds|showed|shows|discovered|demonstrated|revealed|concluded|suggests?|suggested|reported|confirmed|indicates?|indicated)\s+(?:that\s+)?(.+)$`)

	reOrganizational = regexp.MustCompile(`^((?:The\s+)?[A-Z][\w&.'-]*(?:\s+(?:[A-Z][\w&.'-]*|of|for|and|the)){0,6})\s+(announced|launched|released|unveiled|introduced|acquired|published|approved|banned|confirmed|denied|reported|filed|committed)\s+(.+)$`)

	reGeneral = regexp.MustCompile(`(?i)^(.{1,150}?)\s+(is|are|was|were|has|have|had|will|can|does|do|contains?|includes?|provides?|causes?|requires?)\s+(.+)$`)
)

// patternTable is the cascade in strict precedence order.
var patternTable = []pattern{
	{
		name:           "quantified",
		claimType:      model.ClaimTypeQuantified,
		baseConfidence: 0.90,
		re:             reQuantified,
		extract: func(m []string) (extraction, bool) {
			object := strings.TrimSpace(m[3])
			quantifier := strings.TrimSpace(m[4])
			if object == "" {
				object = quantifier
			}
			return extraction{
				Subject:    strings.TrimSpace(m[1]),
				Predicate:  strings.ToLower(strings.TrimSpace(m[2])),
				Object:     object,
				Quantifier: quantifier,
			}, true
		},
	},
	{
		name:           "comparative",
		claimType:      model.ClaimTypeComparative,
		baseConfidence: 0.85,
		re:             reComparative,
		extract: func(m []string) (extraction, bool) {
			comparator := strings.TrimSpace(m[3])
			if middle := strings.TrimSpace(m[4]); middle != "" {
				comparator += " " + middle
			}
			return extraction{
				Subject:   strings.TrimSpace(m[1]),
				Predicate: strings.ToLower(strings.TrimSpace(m[2])) + " " + strings.ToLower(comparator) + " than",
				Object:    strings.TrimSpace(m[5]),
			}, true
		},
	},
	{
		name:           "scientific",
		claimType:      model.ClaimTypeScientific,
		baseConfidence: 0.80,
		re:             reScientific,
		extract: func(m []string) (extraction, bool) {
			return extraction{
				Subject:   strings.TrimSpace(m[1]),
				Predicate: strings.ToLower(strings.TrimSpace(m[2])),
				Object:    strings.TrimSpace(m[3]),
			}, true
		},
	},
	{
		name:           "organizational",
		claimType:      model.ClaimTypeOrganizational,
		baseConfidence: 0.75,
		re:             reOrganizational,
		extract: func(m []string) (extraction, bool) {
			return extraction{
				Subject:   strings.TrimSpace(m[1]),
				Predicate: strings.ToLower(strings.TrimSpace(m[2])),
				Object:    strings.TrimSpace(m[3]),
			}, true
		},
	},
	{
		name:           "general",
		claimType:      model.ClaimTypeGeneral,
		baseConfidence: 0.60,
		re:             reGeneral,
		extract: func(m []string) (extraction, bool) {
			return extraction{
				Subject:   strings.TrimSpace(m[1]),
				Predicate: strings.ToLower(strings.TrimSpace(m[2])),
				Object:    strings.TrimSpace(m[3]),
			}, true
		},
	},
}

// matchPattern runs the cascade and returns the first successful extraction.
func matchPattern(text string) (pattern, extraction, bool) {
	for _, p := range patternTable {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		ex, ok := p.extract(m)
		if !ok || ex.Subject == "" || ex.Object == "" {
			continue
		}
		return p, ex, true
	}
	return pattern{}, extraction{}, false
}
