package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/veritrail/veritrail/internal/cache"
	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/util"
	"github.com/veritrail/veritrail/internal/worker"
)

// Fetcher retrieves content-addressed payloads by iterating a prioritized
// list of gateways sequentially. Sequential iteration bounds concurrent load
// and gives deterministic gateway-preference ordering; the first 2xx response
// with a non-empty body wins.
type Fetcher struct {
	httpClient *http.Client
	gateways   []string
	cfg        Options
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	cache      cache.Cache
}

// Options configures a Fetcher.
type Options struct {
	AttemptTimeout time.Duration
	MaxGateways    int
	Mode           model.FetchMode
	UserAgent      string
	MaxBodyBytes   int64

	// RequestsPerSecond > 0 enables per-gateway-host rate limiting.
	RequestsPerSecond float64
	Burst             int

	// RespectRobots enables a fail-open robots.txt check per gateway host.
	RespectRobots bool

	// CacheTTL > 0 enables payload caching keyed by content identifier.
	CacheTTL time.Duration

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewFetcher creates a new gateway fetcher. The gateway list must be
// non-empty; each entry is a base URL the content identifier is appended to.
func NewFetcher(gateways []string, opts Options, payloadCache cache.Cache) (*Fetcher, error) {
	if len(gateways) == 0 {
		return nil, fmt.Errorf("gateway list must not be empty")
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 12 * time.Second
	}
	if opts.MaxGateways <= 0 || opts.MaxGateways > len(gateways) {
		opts.MaxGateways = len(gateways)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 2_000_000
	}
	if opts.Mode == "" {
		opts.Mode = model.FetchModeStrict
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		gateways: gateways,
		cfg:      opts,
		cache:    payloadCache,
	}

	if opts.RequestsPerSecond > 0 {
		f.limiter = worker.NewLimiter(opts.RequestsPerSecond, opts.Burst)
	}
	if opts.RespectRobots {
		f.robots = util.NewRobotsChecker(opts.UserAgent, opts.AttemptTimeout)
	}

	return f, nil
}

// Fetch retrieves the payload for a content identifier. In strict mode an
// exhausted cascade returns *AllGatewaysFailedError; in best-effort mode a
// locally synthesized substitute is returned instead (Succeeded stays false
// so callers can tell substitute content from gateway content).
func (f *Fetcher) Fetch(ctx context.Context, contentID string) (*model.FetchResult, error) {
	if contentID == "" {
		return nil, fmt.Errorf("content identifier must not be empty")
	}

	if f.cache != nil && f.cfg.CacheTTL > 0 {
		if data, found := f.cache.Get(cache.CacheKey(contentID)); found {
			return &model.FetchResult{
				ContentID: contentID,
				RawText:   string(data),
				Succeeded: true,
				FromCache: true,
			}, nil
		}
	}

	result := &model.FetchResult{ContentID: contentID}

	for i, gw := range f.gateways {
		if i >= f.cfg.MaxGateways {
			break
		}

		attempt, text := f.tryGateway(ctx, gw, contentID)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Outcome == model.AttemptSuccess {
			result.GatewayUsed = gw
			result.RawText = text
			result.Succeeded = true

			if f.cache != nil && f.cfg.CacheTTL > 0 {
				_ = f.cache.Set(cache.CacheKey(contentID), []byte(text), f.cfg.CacheTTL)
			}
			return result, nil
		}

		slog.Debug("gateway attempt failed",
			"content_id", contentID,
			"gateway", gw,
			"outcome", attempt.Outcome,
			"duration_ms", attempt.DurationMs,
			"error", attempt.Error)

		// A cancelled parent context ends the cascade early.
		if ctx.Err() != nil {
			break
		}
	}

	if f.cfg.Mode == model.FetchModeBestEffort {
		result.RawText = substitutePayload(contentID)
		return result, nil
	}

	return nil, &AllGatewaysFailedError{ContentID: contentID, Attempts: result.Attempts}
}

// tryGateway performs a single bounded GET against one gateway.
func (f *Fetcher) tryGateway(ctx context.Context, gw, contentID string) (model.GatewayAttempt, string) {
	attempt := model.GatewayAttempt{Gateway: gw}
	rawURL := gw + contentID
	start := time.Now()

	finish := func(outcome model.AttemptOutcome, errMsg string) (model.GatewayAttempt, string) {
		attempt.DurationMs = time.Since(start).Milliseconds()
		attempt.Outcome = outcome
		attempt.Error = errMsg
		return attempt, ""
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return finish(model.AttemptNetwork, fmt.Sprintf("rate limit wait: %v", err))
		}
	}

	if f.robots != nil {
		// Fail-open: politeness checks never block retrieval on errors.
		if allowed, err := f.robots.CanFetch(ctx, rawURL); err == nil && !allowed {
			return finish(model.AttemptHTTP, "disallowed by robots.txt")
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return finish(model.AttemptNetwork, fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/plain, application/json, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return finish(model.AttemptTimeout, fmt.Sprintf("timeout after %v", f.cfg.AttemptTimeout))
		}
		return finish(model.AttemptNetwork, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return finish(model.AttemptHTTP, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return finish(model.AttemptTimeout, fmt.Sprintf("timeout after %v", f.cfg.AttemptTimeout))
		}
		return finish(model.AttemptNetwork, fmt.Sprintf("read body: %v", err))
	}

	text := normalizePayload(body, resp.Header.Get("Content-Type"))
	if text == "" {
		return finish(model.AttemptEmpty, "empty body")
	}

	attempt.DurationMs = time.Since(start).Milliseconds()
	attempt.Outcome = model.AttemptSuccess
	return attempt, text
}

// normalizePayload converts a gateway response body to plain text for the
// structurer: JSON is compacted to its string form, HTML is reduced to
// visible text, anything else passes through trimmed.
func normalizePayload(body []byte, contentType string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	if strings.Contains(contentType, "json") || looksLikeJSON(trimmed) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, []byte(trimmed)); err == nil {
			return compact.String()
		}
		return trimmed
	}

	if strings.Contains(contentType, "html") || strings.HasPrefix(trimmed, "<") {
		if doc, err := html.Parse(strings.NewReader(trimmed)); err == nil {
			if text := strings.TrimSpace(extractVisibleText(doc)); text != "" {
				return text
			}
		}
	}

	return trimmed
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// substitutePayload synthesizes best-effort content when every gateway
// failed. Never used in strict mode.
func substitutePayload(contentID string) string {
	return fmt.Sprintf("Anchored content %s is unavailable from all configured gateways.", contentID)
}
