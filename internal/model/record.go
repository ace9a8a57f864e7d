package model

import "time"

// ContentRecord is created when the ledger watcher observes a transaction
// whose memo yields a parseable content identifier. Immutable once created.
type ContentRecord struct {
	ContentID           string    `json:"content_id"`
	SourceTransactionID string    `json:"source_transaction_id"`
	LedgerTopicID       string    `json:"ledger_topic_id"`
	ConsensusTimestamp  time.Time `json:"consensus_timestamp"`
	Memo                string    `json:"memo"`

	// ChargedFee is the transaction fee in the ledger's smallest denomination.
	// The planner uses it to flag anomalously expensive anchors.
	ChargedFee int64 `json:"charged_fee,omitempty"`
}

// AttemptOutcome classifies a single gateway attempt.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptTimeout AttemptOutcome = "timeout"
	AttemptHTTP    AttemptOutcome = "http_error"      // Non-2xx response
	AttemptNetwork AttemptOutcome = "transport_error" // DNS, connect, TLS failures
	AttemptEmpty   AttemptOutcome = "empty_body"
)

// GatewayAttempt records one gateway try within a fetch cascade.
type GatewayAttempt struct {
	Gateway    string         `json:"gateway"`
	DurationMs int64          `json:"duration_ms"`
	Outcome    AttemptOutcome `json:"outcome"`
	Error      string         `json:"error,omitempty"`
}

// FetchResult contains the payload retrieved for a content identifier and the
// ordered log of gateway attempts that produced it. Not persisted beyond the
// processing of one ContentRecord.
type FetchResult struct {
	ContentID   string           `json:"content_id"`
	GatewayUsed string           `json:"gateway_used,omitempty"`
	RawText     string           `json:"raw_text,omitempty"`
	Attempts    []GatewayAttempt `json:"attempts"`
	Succeeded   bool             `json:"succeeded"`

	// FromCache is set when the payload was served from the local content
	// cache without any network attempt.
	FromCache bool `json:"from_cache,omitempty"`
}

// Status tracks the lifecycle of one content identifier in the pipeline.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed" // Retryable: a later discovery may succeed
)

// ProcessedClaim is the aggregate result of one pipeline pass, keyed uniquely
// by ContentID. Created exactly once per identifier: a repeat discovery of the
// same identifier is a no-op that returns the cached record.
type ProcessedClaim struct {
	ContentID string          `json:"content_id"`
	RawText   string          `json:"raw_text"`
	Claim     StructuredClaim `json:"claim"`
	Ledger    ContentRecord   `json:"ledger"`
	Plan      EvidencePlan    `json:"plan"`

	ProcessingTimeMs int64     `json:"processing_time_ms"`
	ProcessedAt      time.Time `json:"processed_at"`
}
