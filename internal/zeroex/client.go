package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/httpclient"
	"github.com/Checker-Finance/zeroex-adapter/internal/rate"
)

// Client wraps low-level HTTP communication with the 0x Swap API.
// Configuration (base URL, API key) is supplied per-request via
// IntegratorConfig so that a single Client instance can serve all
// integrators.
type Client struct {
	logger *zap.Logger
	exec   *httpclient.Executor
}

// NewClient constructs a new 0x HTTP client instance.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager) *Client {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "zeroex", func(status int, body []byte) error {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("zeroex.client_error",
			zap.Int("status", status),
			zap.String("name", errResp.Name),
			zap.String("message", errResp.Message),
			zap.String("body", string(body)))

		errMsg := errResp.Message
		if errMsg == "" {
			errMsg = errResp.Name
		}
		if errMsg == "" {
			errMsg = string(body)
		}
		return fmt.Errorf("zeroex returned %d: %s", status, errMsg)
	})
	return &Client{
		logger: logger,
		exec:   exec,
	}
}

// Price fetches an indicative price.
// GET /swap/permit2/price
func (c *Client) Price(ctx context.Context, cfg *IntegratorConfig, query url.Values) (*PriceResponse, error) {
	var resp PriceResponse
	if err := c.getJSON(ctx, cfg, "/swap/permit2/price", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Quote fetches a firm quote with a settlement transaction.
// GET /swap/permit2/quote
func (c *Client) Quote(ctx context.Context, cfg *IntegratorConfig, query url.Values) (*QuoteResponse, error) {
	var resp QuoteResponse
	if err := c.getJSON(ctx, cfg, "/swap/permit2/quote", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON performs an authenticated GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, cfg *IntegratorConfig, path string, query url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", cfg.BaseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	setHeaders(req, cfg)

	return c.exec.DoJSON(ctx, req, cfg.rateLimitKey(), out)
}

// setHeaders sets the required headers for 0x API requests.
func setHeaders(req *http.Request, cfg *IntegratorConfig) {
	version := cfg.Version
	if version == "" {
		version = "v2"
	}
	req.Header.Set("0x-api-key", cfg.APIKey)
	req.Header.Set("0x-version", version)
	req.Header.Set("Accept", "application/json")
}
