package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/veritrail/veritrail/internal/model"
)

// SQLiteStore implements Store using SQLite. Structured fields that only
// ever round-trip (claim, plan, ledger metadata) are stored as JSON; the
// columns queried for statistics are first-class.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_claims (
		content_id   TEXT PRIMARY KEY,
		claim_type   TEXT NOT NULL,
		confidence   REAL NOT NULL,
		priority     INTEGER NOT NULL,
		processed_at TEXT NOT NULL,
		payload      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_claims_processed ON processed_claims(processed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_claims_type ON processed_claims(claim_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put records a processed claim.
func (s *SQLiteStore) Put(ctx context.Context, claim *model.ProcessedClaim) error {
	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO processed_claims (content_id, claim_type, confidence, priority, processed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		claim.ContentID,
		string(claim.Claim.ClaimType),
		claim.Claim.Confidence,
		claim.Plan.PriorityLevel,
		claim.ProcessedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert claim %s: %w", claim.ContentID, err)
	}
	return nil
}

// Get returns the claim for a content identifier, nil when unknown.
func (s *SQLiteStore) Get(ctx context.Context, contentID string) (*model.ProcessedClaim, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM processed_claims WHERE content_id = ?`, contentID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query claim %s: %w", contentID, err)
	}

	var claim model.ProcessedClaim
	if err := json.Unmarshal([]byte(payload), &claim); err != nil {
		return nil, fmt.Errorf("unmarshal claim %s: %w", contentID, err)
	}
	return &claim, nil
}

// Has reports whether a content identifier has been processed.
func (s *SQLiteStore) Has(ctx context.Context, contentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_claims WHERE content_id = ?`, contentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query claim %s: %w", contentID, err)
	}
	return n > 0, nil
}

// List returns all processed claims, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.ProcessedClaim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM processed_claims ORDER BY processed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []*model.ProcessedClaim
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		var claim model.ProcessedClaim
		if err := json.Unmarshal([]byte(payload), &claim); err != nil {
			return nil, fmt.Errorf("unmarshal claim: %w", err)
		}
		claims = append(claims, &claim)
	}
	return claims, rows.Err()
}

// Stats returns aggregate statistics computed in SQL.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		CountsByClaimType:    make(map[model.ClaimType]int),
		PriorityDistribution: make(map[int]int),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(confidence), 0) FROM processed_claims`).
		Scan(&stats.TotalClaims, &stats.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT claim_type, COUNT(*) FROM processed_claims GROUP BY claim_type`)
	if err != nil {
		return nil, fmt.Errorf("claim type counts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var ct string
		var n int
		if err := rows.Scan(&ct, &n); err != nil {
			return nil, fmt.Errorf("scan claim type count: %w", err)
		}
		stats.CountsByClaimType[model.ClaimType(ct)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT priority, COUNT(*) FROM processed_claims GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("priority counts: %w", err)
	}
	defer func() { _ = prows.Close() }()
	for prows.Next() {
		var p, n int
		if err := prows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		stats.PriorityDistribution[p] = n
	}
	return stats, prows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Open creates a store from configuration: "sqlite" with a path, otherwise
// the in-memory backend.
func Open(cfg model.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return NewSQLiteStore(cfg.Path)
	case "", "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, sqlite)", cfg.Backend)
	}
}
