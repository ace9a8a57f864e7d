package structurer

import (
	"regexp"
	"strings"
)

// Entity categories. Every category uses fixed lexical patterns; duplicates
// within a category are removed, order of first occurrence preserved.
const (
	CategoryOrganizations = "organizations"
	CategoryPeople        = "people"
	CategoryNumbers       = "numbers"
	CategoryPercentages   = "percentages"
	CategoryMeasurements  = "measurements"
	CategoryDates         = "dates"
	CategoryTechnology    = "technology"
	CategoryMedical       = "medical"
)

var entityPatterns = []struct {
	category string
	re       *regexp.Regexp
}{
	{CategoryOrganizations, regexp.MustCompile(`\b(?:[A-Z][\w&.'-]*\s+)*(?:Inc\.?|Corp(?:oration)?\.?|Ltd\.?|LLC|Company|University|Institute|Agency|Ministry|Department|Commission|Organization|Foundation|Laborator(?:y|ies)|Labs|Bank|Group)\b|\b(?:WHO|FDA|NASA|CDC|NIH|SEC|EPA|IMF|NATO|UN|EU)\b`)},
	{CategoryPeople, regexp.MustCompile(`\b(?:Dr|Prof(?:essor)?|Mr|Mrs|Ms|Sen(?:ator)?|Rep)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)},
	{CategoryPercentages, regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:%|percent)\b|\b\d+(?:\.\d+)?%`)},
	{CategoryMeasurements, regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:kg|mg|g|km|cm|mm|mi|miles?|meters?|tons?|lbs?|ml|liters?|GB|TB|MB|GHz|MHz|mph|watts?|°C|°F|degrees)\b`)},
	{CategoryDates, regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?\b|\b(?:19|20)\d{2}\b`)},
	{CategoryNumbers, regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?\b`)},
	{CategoryTechnology, regexp.MustCompile(`(?i)\b(?:artificial intelligence|AI|machine learning|deep learning|neural networks?|blockchain|cryptocurrenc(?:y|ies)|quantum computing|quantum|semiconductors?|5G|cloud computing|software|hardware|algorithms?|robotics|autonomous vehicles?|IoT|cybersecurity|APIs?|chips?|processors?|satellites?)\b`)},
	{CategoryMedical, regexp.MustCompile(`(?i)\b(?:vaccines?|clinical trials?|cancer|tumors?|therap(?:y|ies)|treatments?|drugs?|patients?|diagnos(?:is|es)|diabetes|viruses?|infections?|antibod(?:y|ies)|dosage|placebo|symptoms?|diseases?|immune|insulin|cardiovascular|FDA approval)\b`)},
}

// ExtractEntities runs every category pattern over the full text, regardless
// of which claim pattern matched. Only non-empty categories appear in the
// returned map.
func ExtractEntities(text string) map[string][]string {
	entities := make(map[string][]string)

	for _, ep := range entityPatterns {
		matches := ep.re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}

		seen := make(map[string]bool)
		var unique []string
		for _, m := range matches {
			m = strings.TrimSpace(m)
			key := strings.ToLower(m)
			if m == "" || seen[key] {
				continue
			}
			seen[key] = true
			unique = append(unique, m)
		}

		if len(unique) > 0 {
			entities[ep.category] = unique
		}
	}

	return entities
}
