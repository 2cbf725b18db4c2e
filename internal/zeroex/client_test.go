package zeroex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) *IntegratorConfig {
	return &IntegratorConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Version: "v2",
	}
}

func TestClient_Price_SetsHeaders(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`{"liquidityAvailable":true,"buyAmount":"100","sellAmount":"200"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), nil)
	resp, err := c.Price(context.Background(), testConfig(srv.URL), url.Values{})

	require.NoError(t, err)
	assert.True(t, resp.LiquidityAvailable)
	assert.Equal(t, "100", resp.BuyAmount)
	assert.Equal(t, "test-key", gotHeaders.Get("0x-api-key"))
	assert.Equal(t, "v2", gotHeaders.Get("0x-version"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
}

func TestClient_DefaultsVersionHeader(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("0x-version")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Version = ""

	c := NewClient(zap.NewNop(), nil)
	_, err := c.Price(context.Background(), cfg, url.Values{})

	require.NoError(t, err)
	assert.Equal(t, "v2", gotVersion)
}

func TestClient_Quote_ParsesTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/permit2/quote", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"liquidityAvailable": true,
			"buyAmount": "100",
			"sellAmount": "200",
			"transaction": {"to": "0xabc", "data": "0xdef", "value": "0", "gas": "21000"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), nil)
	resp, err := c.Quote(context.Background(), testConfig(srv.URL), url.Values{})

	require.NoError(t, err)
	require.NotNil(t, resp.Transaction)
	assert.Equal(t, "0xabc", resp.Transaction.To)
	assert.Equal(t, "21000", resp.Transaction.Gas)
}

func TestClient_ErrorResponseSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"TOKEN_NOT_SUPPORTED","message":"buyToken not supported on chain 1"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), nil)
	_, err := c.Price(context.Background(), testConfig(srv.URL), url.Values{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "buyToken not supported")
}

func TestClient_QueryForwarded(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("chainId", "1")
	q.Set("sellAmount", "100000000")

	c := NewClient(zap.NewNop(), nil)
	_, err := c.Price(context.Background(), testConfig(srv.URL), q)

	require.NoError(t, err)
	assert.Equal(t, "1", gotQuery.Get("chainId"))
	assert.Equal(t, "100000000", gotQuery.Get("sellAmount"))
}
