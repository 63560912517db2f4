package egis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/models"
)

// Feature is one row returned by an EGIS layer query: a loose attribute bag
// plus optional boundary geometry. Attributes are decoded into typed per-layer
// rows immediately after fetch (see layers.go); the raw map never crosses the
// aggregation boundary.
type Feature struct {
	Attributes map[string]interface{} `json:"attributes"`
	Geometry   *models.EsriPolygon    `json:"geometry,omitempty"`
}

// queryResponse mirrors the upstream query envelope. ExceededTransferLimit
// drives pagination: the server sets it whenever a page was truncated.
type queryResponse struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
}

// Querier is the outbound boundary the aggregator depends on. It exists so
// aggregation logic can be tested against canned layer responses.
type Querier interface {
	// Query fetches all pages of matching rows from one layer.
	Query(ctx context.Context, layer int, where string, returnGeometry bool) ([]Feature, error)
}

// ClientConfig holds the tunables for the EGIS HTTP client.
type ClientConfig struct {
	// BaseURL is the layer collection root; layer queries go to
	// {BaseURL}/{layer}/query.
	BaseURL string
	// PageSize is the resultRecordCount sent with every page request.
	PageSize int
	// MaxAttempts bounds retries per page request.
	MaxAttempts int
	// RetryBackoff is the base backoff; attempt n sleeps n times this long.
	RetryBackoff time.Duration
	// RequestTimeout bounds a single HTTP attempt.
	RequestTimeout time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
}

// Client queries the EGIS REST API. Safe for concurrent use; per-layer page
// sequences are fetched serially because each page's truncation flag decides
// whether another page exists.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	log        *logger.Logger
}

// NewClient creates an EGIS client with the given configuration.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	cfg.applyDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		log:        log,
	}
}

// Query fetches every page of rows matching the predicate from one layer.
// Pages are requested with an advancing resultOffset until a response comes
// back without the truncation flag.
func (c *Client) Query(ctx context.Context, layer int, where string, returnGeometry bool) ([]Feature, error) {
	var all []Feature
	offset := 0

	for {
		page, err := c.fetchPage(ctx, layer, where, returnGeometry, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Features...)

		if !page.ExceededTransferLimit {
			return all, nil
		}
		offset += c.cfg.PageSize
	}
}

// fetchPage issues one page request, retrying on network failure or a non-2xx
// status with linearly increasing backoff (1x, 2x, ... the base interval).
func (c *Client) fetchPage(ctx context.Context, layer int, where string, returnGeometry bool, offset int) (*queryResponse, error) {
	endpoint := fmt.Sprintf("%s/%d/query", c.cfg.BaseURL, layer)

	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", "*")
	params.Set("returnGeometry", strconv.FormatBool(returnGeometry))
	params.Set("f", "json")
	params.Set("resultOffset", strconv.Itoa(offset))
	params.Set("resultRecordCount", strconv.Itoa(c.cfg.PageSize))

	requestURL := endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, time.Duration(attempt-1)*c.cfg.RetryBackoff); err != nil {
				return nil, err
			}
			c.log.Debug("Retrying layer query", map[string]interface{}{
				"layer":   layer,
				"attempt": attempt,
				"offset":  offset,
			})
		}

		page, err := c.doRequest(ctx, requestURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		c.log.Warn("Layer query attempt failed", map[string]interface{}{
			"layer":   layer,
			"attempt": attempt,
			"offset":  offset,
			"error":   err.Error(),
		})
	}

	return nil, fmt.Errorf("layer %d query failed after %d attempts: %w", layer, c.cfg.MaxAttempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, requestURL string) (*queryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused across retries.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}

// sleepContext waits for the backoff interval, returning early if the caller's
// context is cancelled. Only the retrying call blocks; concurrently fetched
// layers are unaffected.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
