package gateway

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/veritrail/veritrail/internal/model"
)

// fetchSleepFunc is the sleep function used between cascade retries
// (injectable for tests)
var fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// FetchWithRetry wraps Fetch with bounded cascade-level retries: when the
// whole gateway cascade is exhausted in strict mode, it waits with jittered
// exponential backoff and runs the cascade again, up to maxAttempts passes.
// Best-effort fetches never retry since they do not fail.
func (f *Fetcher) FetchWithRetry(ctx context.Context, contentID string, maxAttempts int) (*model.FetchResult, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := f.Fetch(ctx, contentID)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var exhausted *AllGatewaysFailedError
		if !errors.As(err, &exhausted) {
			return nil, err
		}

		if attempt < maxAttempts-1 {
			backoff := backoffWithJitter(attempt)
			slog.Debug("retrying fetch cascade",
				"content_id", contentID,
				"attempt", attempt+1,
				"backoff", backoff)
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

// backoffWithJitter returns 1s, 2s, 4s, ... plus up to 25% random jitter.
func backoffWithJitter(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	jitter := time.Duration(rand.Int63n(int64(base) / 4))
	return base + jitter
}
