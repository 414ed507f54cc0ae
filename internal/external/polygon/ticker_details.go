package polygon

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// tickerDetailsResponse is the /v3/reference/tickers payload
type tickerDetailsResponse struct {
	Status  string         `json:"status"`
	Results *tickerDetails `json:"results"`
}

type tickerDetails struct {
	Ticker                    string   `json:"ticker"`
	Name                      *string  `json:"name"`
	MarketCap                 *float64 `json:"market_cap"`
	WeightedSharesOutstanding *float64 `json:"weighted_shares_outstanding"`
	CurrencyName              *string  `json:"currency_name"`
	Description               *string  `json:"description"`
}

func (d *tickerDetails) empty() bool {
	return d.Name == nil && d.MarketCap == nil && d.WeightedSharesOutstanding == nil &&
		d.CurrencyName == nil && d.Description == nil
}

// TickerDetails returns point-in-time company descriptors of symbol as of date.
// Missing fields stay nil; a response without any of them yields (nil, nil).
func (c *Client) TickerDetails(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.CompanyDetail, error) {
	path := "/v3/reference/tickers/" + url.PathEscape(symbol)
	params := url.Values{}
	params.Set("date", date.String())

	var resp tickerDetailsResponse
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch ticker details %s %s: %w", symbol, date, err)
	}

	if resp.Results == nil || resp.Results.empty() {
		return nil, nil
	}

	r := resp.Results
	return &contracts.CompanyDetail{
		Name:              r.Name,
		MarketCap:         r.MarketCap,
		SharesOutstanding: r.WeightedSharesOutstanding,
		Currency:          r.CurrencyName,
		Description:       r.Description,
	}, nil
}
