package collector

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/mag7-collector/internal/contracts"
)

var trillion = decimal.New(1, 12)

// FormatTrillions renders a dollar amount as "$X.XXT"
func FormatTrillions(v float64) string {
	return "$" + decimal.NewFromFloat(v).Div(trillion).StringFixed(2) + "T"
}

// FormatPercent renders a percentage as "X.X%"
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// Summarize builds the response digest of a snapshot
func Summarize(s *contracts.Snapshot) contracts.Summary {
	m := s.ConcentrationMetrics

	pct := "N/A"
	if m.IndexTotalMarketCap > 0 {
		pct = FormatPercent(m.SubgroupPctOfIndex)
	}

	// 이름이 없으면 null 유지
	var top *string
	if c := s.TopCompany(); c != nil && c.Name != "" {
		name := c.Name
		top = &name
	}

	return contracts.Summary{
		TradingDate:        s.TradingDate,
		CompaniesCollected: len(s.Companies),
		Totals: contracts.Totals{
			SubgroupMarketCap:  FormatTrillions(m.TotalSubgroupMarketCap),
			IndexMarketCap:     FormatTrillions(m.IndexTotalMarketCap),
			SubgroupPctOfIndex: pct,
		},
		TopCompany: top,
	}
}
