package planner

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/structurer"
)

func testRecord() model.ContentRecord {
	return model.ContentRecord{
		ContentID:           "QmPlan1",
		SourceTransactionID: "0.0.5005-1700000000-000000001",
		LedgerTopicID:       "0.0.7777",
		ConsensusTimestamp:  time.Unix(1700000000, 0).UTC(),
		ChargedFee:          100,
	}
}

func TestPlan_QueryCapAndDedup(t *testing.T) {
	claim := model.StructuredClaim{
		Subject: "Acme Corp", Predicate: "increased", Object: "output",
		Quantifier: "40%",
		ClaimType:  model.ClaimTypeQuantified,
		Entities: map[string][]string{
			structurer.CategoryOrganizations: {"Acme Corp", "Globex Inc", "Initech LLC", "Umbrella Corp"},
			structurer.CategoryTechnology:    {"AI", "robotics", "blockchain"},
			structurer.CategoryMedical:       {"vaccine", "clinical trial"},
		},
	}

	plan := NewPlanner(0).Plan(claim, testRecord(), nil)

	if len(plan.SearchQueries) > model.MaxSearchQueries {
		t.Errorf("Got %d queries, cap is %d", len(plan.SearchQueries), model.MaxSearchQueries)
	}

	seen := make(map[string]bool)
	for _, q := range plan.SearchQueries {
		if q == "" {
			t.Error("Empty query in plan")
		}
		if seen[q] {
			t.Errorf("Duplicate query: %q", q)
		}
		seen[q] = true
	}

	// The exact-claim query always comes first.
	if plan.SearchQueries[0] != `"Acme Corp" increased "output"` {
		t.Errorf("First query = %q", plan.SearchQueries[0])
	}
}

func TestPlan_PriorityBounds(t *testing.T) {
	tests := []struct {
		name   string
		claim  model.StructuredClaim
		record model.ContentRecord
		want   int
	}{
		{
			name: "minimal claim",
			claim: model.StructuredClaim{
				Subject: "it", Predicate: "is", Object: "fine",
				ClaimType:  model.ClaimTypeGeneral,
				Confidence: 0.60,
			},
			record: testRecord(),
			want:   1,
		},
		{
			name: "everything stacks but clamps at 5",
			claim: model.StructuredClaim{
				Subject: "Trial", Predicate: "reduced", Object: "mortality",
				Quantifier: "95%",
				ClaimType:  model.ClaimTypeScientific,
				Confidence: 0.92,
				Entities: map[string][]string{
					structurer.CategoryMedical: {"clinical trial"},
				},
			},
			record: model.ContentRecord{ChargedFee: 600_000_000},
			want:   5,
		},
		{
			name: "organizational bump",
			claim: model.StructuredClaim{
				Subject: "Acme", Predicate: "announced", Object: "layoffs",
				ClaimType:  model.ClaimTypeOrganizational,
				Confidence: 0.75,
			},
			record: testRecord(),
			want:   2,
		},
	}

	planner := NewPlanner(500_000_000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planner.Plan(tt.claim, tt.record, nil)
			if plan.PriorityLevel != tt.want {
				t.Errorf("PriorityLevel = %d, want %d", plan.PriorityLevel, tt.want)
			}
			if plan.PriorityLevel < 1 || plan.PriorityLevel > 5 {
				t.Errorf("PriorityLevel %d outside [1,5]", plan.PriorityLevel)
			}
		})
	}
}

func TestPlan_EvidenceTypes(t *testing.T) {
	claim := model.StructuredClaim{
		Subject: "Acme Corp", Predicate: "increased", Object: "output",
		Quantifier: "40%",
		Entities: map[string][]string{
			structurer.CategoryOrganizations: {"Acme Corp"},
		},
	}

	plan := NewPlanner(0).Plan(claim, testRecord(), nil)

	want := []string{
		"web_search", "news_articles",
		"statistical_sources", "data_validation",
		"official_statements", "press_releases",
	}
	if diff := cmp.Diff(want, plan.EvidenceTypes); diff != "" {
		t.Errorf("EvidenceTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_BaselineEvidenceTypes(t *testing.T) {
	claim := model.StructuredClaim{Subject: "it", Predicate: "is", Object: "fine"}
	plan := NewPlanner(0).Plan(claim, testRecord(), nil)

	want := []string{"web_search", "news_articles"}
	if diff := cmp.Diff(want, plan.EvidenceTypes); diff != "" {
		t.Errorf("EvidenceTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_CarriesProofs(t *testing.T) {
	claim := model.StructuredClaim{Subject: "a", Predicate: "b", Object: "c"}
	gateways := []string{"https://ipfs.io/ipfs/", "https://dweb.link/ipfs/"}

	plan := NewPlanner(0).Plan(claim, testRecord(), gateways)

	if plan.ContentID != "QmPlan1" {
		t.Errorf("ContentID = %q", plan.ContentID)
	}
	if plan.LedgerProof.TransactionID != "0.0.5005-1700000000-000000001" {
		t.Errorf("TransactionID = %q", plan.LedgerProof.TransactionID)
	}
	if plan.LedgerProof.TopicID != "0.0.7777" {
		t.Errorf("TopicID = %q", plan.LedgerProof.TopicID)
	}
	if diff := cmp.Diff(gateways, plan.ContentProof.GatewayURLs); diff != "" {
		t.Errorf("GatewayURLs mismatch (-want +got):\n%s", diff)
	}
	if plan.ContentProof.ContentID != "QmPlan1" {
		t.Errorf("ContentProof.ContentID = %q", plan.ContentProof.ContentID)
	}
}
