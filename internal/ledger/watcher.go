package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veritrail/veritrail/internal/model"
)

// State is the watcher lifecycle state.
type State string

const (
	StateStopped State = "stopped"
	StatePolling State = "polling"
)

// Handler receives one discovery event per extracted content identifier.
type Handler func(model.ContentRecord)

// Watcher periodically polls the mirror index for new anchored records.
// Polls are strictly sequential: each cycle completes before the next is
// considered, so a slow index never causes overlapping queries. A failed
// poll is logged and swallowed; polling continues until Stop.
type Watcher struct {
	client   *MirrorClient
	interval time.Duration
	handler  Handler

	// known suppresses discoveries for identifiers the orchestrator already
	// processed or has in flight. Keeping the dedup authority outside the
	// watcher lets failed identifiers be rediscovered and retried.
	known func(contentID string) bool

	mu        sync.Mutex
	state     State
	watermark string
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewWatcher creates a watcher. The known hook may be nil, in which case
// every extracted identifier is emitted.
func NewWatcher(client *MirrorClient, interval time.Duration, handler Handler, known func(string) bool) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if known == nil {
		known = func(string) bool { return false }
	}

	return &Watcher{
		client:   client,
		interval: interval,
		handler:  handler,
		known:    known,
		state:    StateStopped,
	}
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Watermark returns the current consensus-timestamp watermark.
func (w *Watcher) Watermark() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watermark
}

// Start begins polling. The watermark is set to now: only transactions
// anchored after this moment are discovered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.state == StatePolling {
		w.mu.Unlock()
		return fmt.Errorf("watcher already polling")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.state = StatePolling
	w.watermark = ConsensusString(time.Now())
	w.mu.Unlock()

	go w.loop(loopCtx)
	return nil
}

// Stop halts polling. No further poll executes after Stop returns: an
// in-flight cycle is interrupted through its context and does not
// reschedule.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.state != StatePolling {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	w.state = StateStopped
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll runs one discovery cycle. Transient index failures leave the
// watermark unchanged so the next cycle retries the same window.
func (w *Watcher) poll(ctx context.Context) {
	w.mu.Lock()
	watermark := w.watermark
	w.mu.Unlock()

	txs, err := w.client.TransactionsSince(ctx, watermark)
	if err != nil {
		slog.Warn("poll failed", "watermark", watermark, "error", err)
		return
	}

	if len(txs) == 0 {
		return
	}

	// Entries arrive most-recent-first; the first one carries the new
	// watermark.
	newest := txs[0].ConsensusTimestamp

	seenInPage := make(map[string]struct{})
	for _, tx := range txs {
		record, ok := RecordFromTransaction(tx)
		if !ok {
			continue
		}
		if _, dup := seenInPage[record.ContentID]; dup {
			continue
		}
		seenInPage[record.ContentID] = struct{}{}

		if w.known(record.ContentID) {
			continue
		}

		slog.Info("discovered anchored content",
			"content_id", record.ContentID,
			"transaction_id", record.SourceTransactionID,
			"topic_id", record.LedgerTopicID)
		w.handler(record)
	}

	w.mu.Lock()
	w.watermark = newest
	w.mu.Unlock()
}
