package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchWithRetry_TransientFailureRecovers(t *testing.T) {
	originalSleep := fetchSleepFunc
	defer func() { fetchSleepFunc = originalSleep }()

	var slept atomic.Int32
	fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
		slept.Add(1)
		return nil
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "recovered payload")
	}))
	defer server.Close()

	fetcher, err := NewFetcher([]string{server.URL + "/"}, testOptions(), nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	result, err := fetcher.FetchWithRetry(context.Background(), "QmRetry", 3)
	if err != nil {
		t.Fatalf("Expected recovery on second cascade, got %v", err)
	}
	if result.RawText != "recovered payload" {
		t.Errorf("Unexpected payload: %q", result.RawText)
	}
	if slept.Load() != 1 {
		t.Errorf("Expected 1 backoff sleep, got %d", slept.Load())
	}
}

func TestFetchWithRetry_Exhausted(t *testing.T) {
	originalSleep := fetchSleepFunc
	defer func() { fetchSleepFunc = originalSleep }()
	fetchSleepFunc = func(ctx context.Context, d time.Duration) error { return nil }

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher, err := NewFetcher([]string{server.URL + "/"}, testOptions(), nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	_, err = fetcher.FetchWithRetry(context.Background(), "QmDown", 3)
	var exhausted *AllGatewaysFailedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected AllGatewaysFailedError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 cascade passes, got %d", calls.Load())
	}
}

func TestFetchWithRetry_CancelledContextStops(t *testing.T) {
	originalSleep := fetchSleepFunc
	defer func() { fetchSleepFunc = originalSleep }()
	fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher, err := NewFetcher([]string{server.URL + "/"}, testOptions(), nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	_, err = fetcher.FetchWithRetry(context.Background(), "QmCancel", 5)
	if err == nil {
		t.Fatal("Expected error after cancelled backoff")
	}
	var exhausted *AllGatewaysFailedError
	if !errors.As(err, &exhausted) {
		t.Errorf("Expected last cascade error to surface, got %v", err)
	}
}

func TestBackoffWithJitter_Grows(t *testing.T) {
	for attempt := 0; attempt < 4; attempt++ {
		base := time.Duration(1<<uint(attempt)) * time.Second
		got := backoffWithJitter(attempt)
		if got < base || got > base+base/4 {
			t.Errorf("Attempt %d: backoff %v outside [%v, %v]", attempt, got, base, base+base/4)
		}
	}
}
