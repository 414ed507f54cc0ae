package polygon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/pkg/httputil"
	"github.com/wonny/mag7-collector/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	return NewClient(httputil.New(log, 5*time.Second), "test-key", srv.URL, log)
}

func TestDailyAggregate(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"ticker": "AAPL", "status": "OK", "resultsCount": 1,
			"results": [{"o": 187.15, "c": 185.64, "h": 188.44, "l": 183.89, "v": 8.2488674e7, "vw": 185.9465, "t": 1704171600000, "n": 1008871}]
		}`))
	})

	agg, err := c.DailyAggregate(context.Background(), "AAPL", "2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/day/2024-01-02/2024-01-02", gotPath)
	assert.Equal(t, "adjusted=true", gotQuery)
	assert.Equal(t, "Bearer test-key", gotAuth)

	assert.Equal(t, contracts.TradingDate("2024-01-02"), agg.Date)
	assert.Equal(t, 185.64, agg.Close)
	assert.Equal(t, 187.15, agg.Open)
	assert.Equal(t, 188.44, agg.High)
	assert.Equal(t, 183.89, agg.Low)
	assert.Equal(t, int64(82488674), agg.Volume)
	require.NotNil(t, agg.VWAP)
	assert.Equal(t, 185.9465, *agg.VWAP)
	assert.Equal(t, int64(1704171600000), agg.Timestamp)
}

func TestDailyAggregate_NoSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ticker": "ABNB", "status": "OK", "resultsCount": 0}`))
	})

	agg, err := c.DailyAggregate(context.Background(), "ABNB", "2020-11-30")
	assert.NoError(t, err)
	assert.Nil(t, agg)
}

func TestDailyAggregate_MissingVWAP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"o": 1, "c": 2, "h": 3, "l": 0.5, "v": 10, "t": 1}]}`))
	})

	agg, err := c.DailyAggregate(context.Background(), "X", "2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Nil(t, agg.VWAP)
}

func TestDailyAggregate_ServerError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"status":"ERROR"}`, http.StatusInternalServerError)
	})

	agg, err := c.DailyAggregate(context.Background(), "AAPL", "2024-01-02")
	assert.Nil(t, agg)
	require.Error(t, err)

	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, 1, calls, "requests are never retried")
}

func TestTickerDetails(t *testing.T) {
	var gotPath, gotDate string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDate = r.URL.Query().Get("date")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": {
				"ticker": "FB",
				"name": "Meta Platforms, Inc. Class A Common Stock",
				"market_cap": 537500000000.5,
				"weighted_shares_outstanding": 2706000000,
				"currency_name": "usd",
				"description": "Social technology company."
			}
		}`))
	})

	d, err := c.TickerDetails(context.Background(), "FB", "2022-06-01")
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "/v3/reference/tickers/FB", gotPath)
	assert.Equal(t, "2022-06-01", gotDate)

	assert.Equal(t, "Meta Platforms, Inc. Class A Common Stock", d.DisplayName())
	assert.Equal(t, 537500000000.5, d.MarketCapValue())
	require.NotNil(t, d.SharesOutstanding)
	assert.Equal(t, float64(2706000000), *d.SharesOutstanding)
	require.NotNil(t, d.Currency)
	assert.Equal(t, "usd", *d.Currency)
	require.NotNil(t, d.Description)
}

func TestTickerDetails_OptionalFieldsMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "results": {"ticker": "XYZ", "name": "XYZ Corp"}}`))
	})

	d, err := c.TickerDetails(context.Background(), "XYZ", "2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "XYZ Corp", d.DisplayName())
	assert.Nil(t, d.MarketCap)
	assert.Nil(t, d.SharesOutstanding)
	assert.Nil(t, d.Currency)
	assert.Nil(t, d.Description)
	assert.False(t, d.HasMarketCap())
}

func TestTickerDetails_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no results", `{"status": "OK"}`},
		{"null results", `{"status": "OK", "results": null}`},
		{"results without fields", `{"status": "OK", "results": {"ticker": "XYZ"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			d, err := c.TickerDetails(context.Background(), "XYZ", "2024-01-02")
			assert.NoError(t, err)
			assert.Nil(t, d)
		})
	}
}

func TestTickerDetails_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"NOT_FOUND"}`, http.StatusNotFound)
	})

	d, err := c.TickerDetails(context.Background(), "GONE", "2024-01-02")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTickerDetails_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": `))
	})

	_, err := c.TickerDetails(context.Background(), "AAPL", "2024-01-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	log := logger.Nop()
	c := NewClient(httputil.New(log, time.Second), "", "", log)
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c = NewClient(httputil.New(log, time.Second), "", "http://localhost:9000/", log)
	assert.Equal(t, "http://localhost:9000", c.baseURL)
}
