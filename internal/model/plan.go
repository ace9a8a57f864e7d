package model

import "time"

// MaxSearchQueries caps the number of queries in an evidence plan.
const MaxSearchQueries = 8

// LedgerProof lets a downstream auditor locate the anchoring transaction
// independently of this pipeline's internal state.
type LedgerProof struct {
	TransactionID      string    `json:"transaction_id"`
	ConsensusTimestamp time.Time `json:"consensus_timestamp"`
	TopicID            string    `json:"topic_id"`
}

// ContentProof lets an auditor re-fetch and re-verify the original payload.
type ContentProof struct {
	ContentID   string   `json:"content_id"`
	GatewayURLs []string `json:"gateway_urls"`
}

// EvidencePlan is the hand-off contract to the downstream evidence-retrieval
// phase: a prioritized set of search queries and an evidence-type checklist.
type EvidencePlan struct {
	ContentID string `json:"content_id"`

	// SearchQueries is ordered by priority, deduplicated, at most
	// MaxSearchQueries entries.
	SearchQueries []string `json:"search_queries"`

	// PriorityLevel is an integer in [1,5].
	PriorityLevel int `json:"priority_level"`

	// EvidenceTypes lists the categories of evidence the retrieval phase
	// should collect, deduplicated.
	EvidenceTypes []string `json:"evidence_types"`

	LedgerProof  LedgerProof  `json:"ledger_proof"`
	ContentProof ContentProof `json:"content_proof"`
}
