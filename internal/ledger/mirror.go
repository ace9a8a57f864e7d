package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/veritrail/veritrail/internal/model"
)

// submitMessageType is the only transaction kind carrying anchored content.
const submitMessageType = "CONSENSUSSUBMITMESSAGE"

// cidPattern extracts a content identifier from a decoded transaction memo.
var cidPattern = regexp.MustCompile(`CID:([A-Za-z0-9]+)`)

// MirrorClient queries a ledger mirror index for confirmed transactions by
// account and time.
type MirrorClient struct {
	baseURL    string
	accountID  string
	pageLimit  int
	userAgent  string
	httpClient *http.Client
}

// NewMirrorClient creates a new mirror-index client.
func NewMirrorClient(baseURL, accountID string, pageLimit int, timeout time.Duration, userAgent string) *MirrorClient {
	if pageLimit <= 0 {
		pageLimit = 25
	}

	return &MirrorClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accountID: accountID,
		pageLimit: pageLimit,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transaction is a single mirror-index transaction entry.
type Transaction struct {
	Name               string `json:"name"`
	MemoBase64         string `json:"memo_base64"`
	ConsensusTimestamp string `json:"consensus_timestamp"`
	TransactionID      string `json:"transaction_id"`
	EntityID           string `json:"entity_id"`
	ChargedTxFee       int64  `json:"charged_tx_fee"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// TransactionsSince returns transactions for the configured account newer
// than the given watermark, most recent first, bounded by the page limit.
// The watermark is a consensus timestamp string ("seconds.nanoseconds").
func (c *MirrorClient) TransactionsSince(ctx context.Context, watermark string) ([]Transaction, error) {
	q := url.Values{}
	q.Set("account.id", c.accountID)
	q.Set("order", "desc")
	q.Set("limit", strconv.Itoa(c.pageLimit))
	q.Set("timestamp", "gt:"+watermark)

	reqURL := c.baseURL + "/transactions?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query mirror index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror index: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed transactionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parsed.Transactions, nil
}

// RecordFromTransaction converts a relevant mirror transaction into a
// ContentRecord. Returns false for irrelevant transaction kinds, undecodable
// memos, and memos without a content-identifier tag.
func RecordFromTransaction(tx Transaction) (model.ContentRecord, bool) {
	if tx.Name != submitMessageType {
		return model.ContentRecord{}, false
	}

	memoBytes, err := base64.StdEncoding.DecodeString(tx.MemoBase64)
	if err != nil {
		return model.ContentRecord{}, false
	}
	memo := string(memoBytes)

	match := cidPattern.FindStringSubmatch(memo)
	if match == nil {
		return model.ContentRecord{}, false
	}

	return model.ContentRecord{
		ContentID:           match[1],
		SourceTransactionID: tx.TransactionID,
		LedgerTopicID:       tx.EntityID,
		ConsensusTimestamp:  ParseConsensusTimestamp(tx.ConsensusTimestamp),
		Memo:                memo,
		ChargedFee:          tx.ChargedTxFee,
	}, true
}

// ConsensusString formats a time as a mirror-index consensus timestamp.
func ConsensusString(t time.Time) string {
	return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
}

// ParseConsensusTimestamp parses a "seconds.nanoseconds" consensus timestamp.
// Malformed input yields the zero time.
func ParseConsensusTimestamp(s string) time.Time {
	parts := strings.SplitN(s, ".", 2)
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}
	}

	var nsec int64
	if len(parts) == 2 {
		// Right-pad to nanosecond precision
		frac := parts[1]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		for len(frac) < 9 {
			frac += "0"
		}
		nsec, _ = strconv.ParseInt(frac, 10, 64)
	}

	return time.Unix(sec, nsec).UTC()
}
