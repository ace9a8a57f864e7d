package planner

import (
	"fmt"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/structurer"
)

// Planner turns a structured claim into a prioritized evidence-retrieval
// plan for the downstream verification phase.
type Planner struct {
	// highFeeThreshold marks a ledger transaction fee as anomalous.
	highFeeThreshold int64
}

// NewPlanner creates a planner. A threshold <= 0 disables the fee bonus.
func NewPlanner(highFeeThreshold int64) *Planner {
	return &Planner{highFeeThreshold: highFeeThreshold}
}

// Plan builds the evidence plan: search queries in priority order
// (deduplicated, capped), a priority level in [1,5], an evidence-type
// checklist, and the ledger/content proofs an auditor needs to re-verify
// independently of this pipeline.
func (p *Planner) Plan(claim model.StructuredClaim, record model.ContentRecord, gateways []string) model.EvidencePlan {
	return model.EvidencePlan{
		ContentID:     record.ContentID,
		SearchQueries: p.queries(claim),
		PriorityLevel: p.priority(claim, record),
		EvidenceTypes: p.evidenceTypes(claim),
		LedgerProof: model.LedgerProof{
			TransactionID:      record.SourceTransactionID,
			ConsensusTimestamp: record.ConsensusTimestamp,
			TopicID:            record.LedgerTopicID,
		},
		ContentProof: model.ContentProof{
			ContentID:   record.ContentID,
			GatewayURLs: gateways,
		},
	}
}

// queries generates search queries in priority order, deduplicated, capped
// at model.MaxSearchQueries.
func (p *Planner) queries(claim model.StructuredClaim) []string {
	seen := make(map[string]bool)
	var queries []string

	add := func(q string) {
		if len(queries) >= model.MaxSearchQueries || q == "" || seen[q] {
			return
		}
		seen[q] = true
		queries = append(queries, q)
	}

	// 1. Exact claim verification
	add(fmt.Sprintf("%q %s %q", claim.Subject, claim.Predicate, claim.Object))

	// 2. Quantifier-specific verification
	if claim.HasQuantifier() {
		add(fmt.Sprintf("%s %s %s statistics verification", claim.Subject, claim.Quantifier, claim.Object))
	}

	// 3. Per-organization official announcements
	for _, org := range claim.Entities[structurer.CategoryOrganizations] {
		add(fmt.Sprintf("%s official announcement %s", org, claim.Object))
	}

	// 4. Per-technology coverage
	for _, tech := range claim.Entities[structurer.CategoryTechnology] {
		add(fmt.Sprintf("%s %s %s", claim.Subject, tech, claim.Predicate))
	}

	// 5. Per-medical-term clinical framing
	for _, med := range claim.Entities[structurer.CategoryMedical] {
		add(fmt.Sprintf("%s clinical evidence %s", med, claim.Subject))
	}

	return queries
}

// priority accumulates bonuses from 1, clamped to [1,5].
func (p *Planner) priority(claim model.StructuredClaim, record model.ContentRecord) int {
	priority := 1

	if claim.HasQuantifier() {
		priority += 2
	}
	switch claim.ClaimType {
	case model.ClaimTypeScientific:
		priority += 2
	case model.ClaimTypeOrganizational:
		priority += 1
	}
	if len(claim.Entities[structurer.CategoryMedical]) > 0 {
		priority += 3
	}
	if claim.Confidence > 0.8 {
		priority += 1
	}
	if p.highFeeThreshold > 0 && record.ChargedFee > p.highFeeThreshold {
		priority += 1
	}

	if priority > 5 {
		priority = 5
	}
	if priority < 1 {
		priority = 1
	}
	return priority
}

// evidenceTypes builds the checklist of evidence categories, deduplicated.
func (p *Planner) evidenceTypes(claim model.StructuredClaim) []string {
	seen := make(map[string]bool)
	var types []string

	add := func(ts ...string) {
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	// Generic verification always applies.
	add("web_search", "news_articles")

	if claim.HasQuantifier() {
		add("statistical_sources", "data_validation")
	}
	if len(claim.Entities[structurer.CategoryOrganizations]) > 0 {
		add("official_statements", "press_releases")
	}
	if len(claim.Entities[structurer.CategoryMedical]) > 0 {
		add("medical_journals", "clinical_trials", "regulatory_databases")
	}
	if len(claim.Entities[structurer.CategoryTechnology]) > 0 {
		add("technical_documentation", "patents", "research_papers")
	}

	return types
}
