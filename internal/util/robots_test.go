package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_DisallowedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /ipfs/\n"))
	}))
	defer srv.Close()

	checker := NewRobotsChecker("veritrail/1.0", time.Second)

	allowed, err := checker.CanFetch(context.Background(), srv.URL+"/ipfs/QmTest123")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("expected /ipfs/ path to be disallowed")
	}

	allowed, err = checker.CanFetch(context.Background(), srv.URL+"/ipns/example")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected /ipns/ path to be allowed")
	}
}

func TestRobotsChecker_CachesPerHost(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer srv.Close()

	checker := NewRobotsChecker("veritrail/1.0", time.Second)
	for i := 0; i < 3; i++ {
		if _, err := checker.CanFetch(context.Background(), srv.URL+"/ipfs/QmTest123"); err != nil {
			t.Fatalf("CanFetch: %v", err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("robots.txt downloads = %d, want 1", got)
	}
}

func TestRobotsChecker_FailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	checker := NewRobotsChecker("veritrail/1.0", 100*time.Millisecond)
	allowed, err := checker.CanFetch(context.Background(), srv.URL+"/ipfs/QmTest123")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected fetch to be allowed when robots.txt is unreachable")
	}
}
