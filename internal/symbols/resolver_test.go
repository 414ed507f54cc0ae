package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/mag7-collector/internal/contracts"
)

func TestResolver_DetailsCutover(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		date contracts.TradingDate
		want string
	}{
		{"2022-06-08", "FB"},   // one day before
		{"2022-06-09", "FB"},   // on the cutover
		{"2022-06-10", "META"}, // one day after
		{"2021-01-04", "FB"},
		{"2024-01-02", "META"},
	}

	for _, tt := range tests {
		t.Run(string(tt.date), func(t *testing.T) {
			assert.Equal(t, tt.want, r.ForDetails("META", tt.date))
		})
	}
}

func TestResolver_AggregatesCutover(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		date contracts.TradingDate
		want string
	}{
		{"2022-06-07", "FB"},   // one day before
		{"2022-06-08", "FB"},   // on the cutover
		{"2022-06-09", "META"}, // one day after
		{"2022-06-10", "META"},
	}

	for _, tt := range tests {
		t.Run(string(tt.date), func(t *testing.T) {
			assert.Equal(t, tt.want, r.ForAggregates("META", tt.date))
		})
	}
}

func TestResolver_CutoversDiffer(t *testing.T) {
	r := NewResolver()

	// 2022-06-09: 상세 조회는 아직 FB, 일봉 조회는 이미 META
	assert.Equal(t, "FB", r.ForDetails("META", "2022-06-09"))
	assert.Equal(t, "META", r.ForAggregates("META", "2022-06-09"))
}

func TestResolver_UnknownTickerUnchanged(t *testing.T) {
	r := NewResolver()

	for _, ticker := range []string{"AAPL", "MSFT", "FB", "BRK.B", ""} {
		assert.Equal(t, ticker, r.ForDetails(ticker, "2020-01-02"))
		assert.Equal(t, ticker, r.ForAggregates(ticker, "2020-01-02"))
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver()

	id := r.Resolve("META", "2022-06-01", ForDetails)
	assert.Equal(t, contracts.TickerIdentity{Current: "META", Historical: "FB", AsOf: "2022-06-01"}, id)
	assert.True(t, id.Renamed())

	id = r.Resolve("AAPL", "2022-06-01", ForAggregates)
	assert.False(t, id.Renamed())
}

func TestResolver_CustomRules(t *testing.T) {
	r := NewResolver(Rule{Ticker: "GOOGL", Legacy: "GOOG", DetailsCutover: "2014-04-02", AggregatesCutover: "2014-04-02"})

	assert.Equal(t, "GOOG", r.ForDetails("GOOGL", "2014-04-01"))
	assert.Equal(t, "GOOGL", r.ForDetails("GOOGL", "2014-04-03"))
	// custom table replaces the defaults
	assert.Equal(t, "META", r.ForDetails("META", "2021-01-04"))
}
