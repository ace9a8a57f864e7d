package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veritrail/veritrail/internal/cache"
	"github.com/veritrail/veritrail/internal/gateway"
	"github.com/veritrail/veritrail/internal/ledger"
	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/planner"
	"github.com/veritrail/veritrail/internal/semantic"
	"github.com/veritrail/veritrail/internal/store"
	"github.com/veritrail/veritrail/internal/structurer"
)

// ErrInFlight is returned when a content identifier is already being
// processed by another goroutine.
var ErrInFlight = fmt.Errorf("content identifier already in flight")

// Pipeline composes the watcher, fetcher, structurer, planner and store.
// Discovered identifiers are processed concurrently (bounded); within one
// identifier the gateway cascade stays sequential.
type Pipeline struct {
	fetcher    *gateway.Fetcher
	structurer *structurer.Structurer
	planner    *planner.Planner
	claims     store.Store
	watcher    *ledger.Watcher
	cfg        *model.Config

	mu       sync.Mutex
	inflight map[string]struct{}
	statuses map[string]model.Status

	sem chan struct{}
	wg  sync.WaitGroup

	// processCtx outlives the watcher so a fetch in flight during Stop can
	// complete and still record its result.
	processCtx    context.Context
	processCancel context.CancelFunc
}

// NewPipeline creates a pipeline from configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	var payloadCache cache.Cache
	if cfg.Gateway.CacheTTL > 0 {
		if cfg.Gateway.CacheDir != "" {
			payloadCache = cache.NewLayeredCache(cfg.Gateway.CacheTTL, cfg.Gateway.CacheDir, 24*time.Hour)
		} else {
			payloadCache = cache.NewMemoryCache(cfg.Gateway.CacheTTL, 10*time.Minute)
		}
	}

	fetcher, err := gateway.NewFetcher(cfg.Gateway.URLs, gateway.Options{
		AttemptTimeout:    cfg.Gateway.AttemptTimeout,
		MaxGateways:       cfg.Gateway.MaxGateways,
		Mode:              cfg.Gateway.Mode,
		UserAgent:         cfg.HTTP.UserAgent,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		Burst:             cfg.Gateway.Burst,
		RespectRobots:     cfg.Gateway.RespectRobots,
		CacheTTL:          cfg.Gateway.CacheTTL,
		HTTPProxy:         cfg.HTTP.HTTPProxy,
		HTTPSProxy:        cfg.HTTP.HTTPSProxy,
		NoProxy:           cfg.HTTP.NoProxy,
	}, payloadCache)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	// A misconfigured oracle disables enrichment rather than failing the
	// pipeline.
	oracle, err := semantic.NewOracle(semantic.ConfigFromModel(cfg.Oracle, cfg.HTTP))
	if err != nil {
		slog.Warn("semantic oracle disabled", "error", err)
		oracle = nil
	}

	claims, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	workers := cfg.Concurrency.ProcessWorkers
	if workers <= 0 {
		workers = 4
	}

	return &Pipeline{
		fetcher:    fetcher,
		structurer: structurer.NewStructurer(oracle),
		planner:    planner.NewPlanner(cfg.Planner.HighFeeThreshold),
		claims:     claims,
		cfg:        cfg,
		inflight:   make(map[string]struct{}),
		statuses:   make(map[string]model.Status),
		sem:        make(chan struct{}, workers),
	}, nil
}

// Start begins watching the ledger index and processing discoveries.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.watcher != nil && p.watcher.State() == ledger.StatePolling {
		return fmt.Errorf("pipeline already started")
	}

	p.processCtx, p.processCancel = context.WithCancel(context.Background())

	client := ledger.NewMirrorClient(
		p.cfg.Ledger.MirrorBaseURL,
		p.cfg.Ledger.AccountID,
		p.cfg.Ledger.PageLimit,
		p.cfg.Gateway.AttemptTimeout,
		p.cfg.HTTP.UserAgent,
	)
	p.watcher = ledger.NewWatcher(client, p.cfg.Ledger.PollInterval, p.onDiscovery, p.known)

	return p.watcher.Start(ctx)
}

// Stop halts discovery and waits for in-flight processing to finish.
// Completed fetches are still recorded; discovery dedup makes that safe.
func (p *Pipeline) Stop() {
	if p.watcher != nil {
		p.watcher.Stop()
	}
	p.wg.Wait()
	if p.processCancel != nil {
		p.processCancel()
	}
}

// Close releases the underlying store.
func (p *Pipeline) Close() error {
	return p.claims.Close()
}

// known reports whether an identifier is processed or in flight. Failed
// identifiers are neither, so a later discovery retries them.
func (p *Pipeline) known(contentID string) bool {
	p.mu.Lock()
	if _, busy := p.inflight[contentID]; busy {
		p.mu.Unlock()
		return true
	}
	p.mu.Unlock()

	has, err := p.claims.Has(context.Background(), contentID)
	if err != nil {
		slog.Warn("store lookup failed", "content_id", contentID, "error", err)
		return false
	}
	return has
}

// onDiscovery handles one watcher event. Processing runs on its own
// goroutine so a hung gateway never stalls discovery of other identifiers.
func (p *Pipeline) onDiscovery(record model.ContentRecord) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		if _, err := p.Process(p.processCtx, record); err != nil {
			slog.Error("processing failed", "content_id", record.ContentID, "error", err)
		}
	}()
}

// Process runs the full pass for one content record: fetch, structure, plan,
// store. Idempotent: an identifier already in the store returns the cached
// result with no second fetch.
func (p *Pipeline) Process(ctx context.Context, record model.ContentRecord) (*model.ProcessedClaim, error) {
	contentID := record.ContentID

	if existing, err := p.claims.Get(ctx, contentID); err != nil {
		return nil, fmt.Errorf("store lookup: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	p.mu.Lock()
	if _, busy := p.inflight[contentID]; busy {
		p.mu.Unlock()
		return nil, ErrInFlight
	}
	p.inflight[contentID] = struct{}{}
	p.statuses[contentID] = model.StatusPending
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inflight, contentID)
		p.mu.Unlock()
	}()

	start := time.Now()

	fetchResult, err := p.fetcher.FetchWithRetry(ctx, contentID, p.cfg.Gateway.RetryAttempts)
	if err != nil {
		p.setStatus(contentID, model.StatusFailed)
		return nil, fmt.Errorf("fetch %s: %w", contentID, err)
	}

	claim := p.structurer.Structure(ctx, fetchResult.RawText)
	plan := p.planner.Plan(claim, record, p.cfg.Gateway.URLs)

	processed := &model.ProcessedClaim{
		ContentID:        contentID,
		RawText:          fetchResult.RawText,
		Claim:            claim,
		Ledger:           record,
		Plan:             plan,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ProcessedAt:      time.Now().UTC(),
	}

	if err := p.claims.Put(ctx, processed); err != nil {
		// A concurrent writer may have won the race; serve its result.
		if existing, getErr := p.claims.Get(ctx, contentID); getErr == nil && existing != nil {
			return existing, nil
		}
		p.setStatus(contentID, model.StatusFailed)
		return nil, fmt.Errorf("store %s: %w", contentID, err)
	}

	p.setStatus(contentID, model.StatusProcessed)
	slog.Info("processed claim",
		"content_id", contentID,
		"claim_type", claim.ClaimType,
		"confidence", claim.Confidence,
		"priority", plan.PriorityLevel,
		"gateway", fetchResult.GatewayUsed,
		"duration_ms", processed.ProcessingTimeMs)

	return processed, nil
}

// ProcessBatch runs the pipeline for a set of identifiers concurrently,
// bounded by the configured worker count. Used by the one-shot CLI path.
func (p *Pipeline) ProcessBatch(ctx context.Context, records []model.ContentRecord) ([]*model.ProcessedClaim, error) {
	results := make([]*model.ProcessedClaim, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cap(p.sem))

	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			processed, err := p.Process(gctx, record)
			if err != nil {
				return err
			}
			results[i] = processed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Pipeline) setStatus(contentID string, status model.Status) {
	p.mu.Lock()
	p.statuses[contentID] = status
	p.mu.Unlock()
}

// Status returns the lifecycle status of a content identifier; false when
// the identifier has never been discovered.
func (p *Pipeline) Status(contentID string) (model.Status, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status, ok := p.statuses[contentID]
	return status, ok
}

// Claims returns all processed claims, most recent first.
func (p *Pipeline) Claims(ctx context.Context) ([]*model.ProcessedClaim, error) {
	return p.claims.List(ctx)
}

// Claim returns a single processed claim, nil when unknown.
func (p *Pipeline) Claim(ctx context.Context, contentID string) (*model.ProcessedClaim, error) {
	return p.claims.Get(ctx, contentID)
}

// Stats returns aggregate statistics over processed claims.
func (p *Pipeline) Stats(ctx context.Context) (*store.Stats, error) {
	return p.claims.Stats(ctx)
}

// Watermark exposes the watcher's current watermark for status reporting.
func (p *Pipeline) Watermark() string {
	if p.watcher == nil {
		return ""
	}
	return p.watcher.Watermark()
}
