// Package store provides the processed-claim storage interface and its
// in-memory and SQLite implementations, decoupling storage choice from the
// pipeline logic.
package store

import (
	"context"

	"github.com/veritrail/veritrail/internal/model"
)

// Store is the narrow persistence interface for processed claims.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put records a processed claim. Putting an identifier twice is an
	// error: processing is idempotent and callers check Has/Get first.
	Put(ctx context.Context, claim *model.ProcessedClaim) error

	// Get returns the claim for a content identifier, or (nil, nil) when
	// the identifier is unknown.
	Get(ctx context.Context, contentID string) (*model.ProcessedClaim, error)

	// Has reports whether a content identifier has been processed.
	Has(ctx context.Context, contentID string) (bool, error)

	// List returns all processed claims, most recent first.
	List(ctx context.Context) ([]*model.ProcessedClaim, error)

	// Stats returns aggregate statistics over all processed claims.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases any underlying resources.
	Close() error
}

// Stats holds aggregate statistics over the result store.
type Stats struct {
	TotalClaims          int                     `json:"total_claims"`
	CountsByClaimType    map[model.ClaimType]int `json:"counts_by_claim_type"`
	AverageConfidence    float64                 `json:"average_confidence"`
	PriorityDistribution map[int]int             `json:"priority_distribution"`
}

// aggregate computes Stats from a claim list; shared by backends.
func aggregate(claims []*model.ProcessedClaim) *Stats {
	stats := &Stats{
		TotalClaims:          len(claims),
		CountsByClaimType:    make(map[model.ClaimType]int),
		PriorityDistribution: make(map[int]int),
	}

	var confidenceSum float64
	for _, c := range claims {
		stats.CountsByClaimType[c.Claim.ClaimType]++
		stats.PriorityDistribution[c.Plan.PriorityLevel]++
		confidenceSum += c.Claim.Confidence
	}

	if len(claims) > 0 {
		stats.AverageConfidence = confidenceSum / float64(len(claims))
	}
	return stats
}
