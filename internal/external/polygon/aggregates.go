package polygon

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// aggsResponse is the /v2/aggs payload
type aggsResponse struct {
	Ticker       string   `json:"ticker"`
	Status       string   `json:"status"`
	ResultsCount int      `json:"resultsCount"`
	Results      []aggBar `json:"results"`
}

type aggBar struct {
	Open         float64  `json:"o"`
	Close        float64  `json:"c"`
	High         float64  `json:"h"`
	Low          float64  `json:"l"`
	Volume       float64  `json:"v"`
	VWAP         *float64 `json:"vw"`
	Timestamp    int64    `json:"t"`
	Transactions int      `json:"n"`
}

// DailyAggregate returns the adjusted one-day bar of symbol on date.
// No session data yields (nil, nil).
func (c *Client) DailyAggregate(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.StockAggregate, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s", url.PathEscape(symbol), date, date)
	params := url.Values{}
	params.Set("adjusted", "true")

	var resp aggsResponse
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch aggregates %s %s: %w", symbol, date, err)
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	// 하루 범위 조회이므로 첫 번째 봉만 사용
	bar := resp.Results[0]
	return &contracts.StockAggregate{
		Date:      date,
		Close:     bar.Close,
		Open:      bar.Open,
		High:      bar.High,
		Low:       bar.Low,
		Volume:    int64(bar.Volume),
		VWAP:      bar.VWAP,
		Timestamp: bar.Timestamp,
	}, nil
}
