package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// Querier is the subset of pgxpool.Pool used here
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// membersQuery selects point-in-time membership of a named universe.
// valid_to is exclusive; NULL bounds are open.
const membersQuery = `
	SELECT ticker
	FROM universe_members
	WHERE universe_name = $1
	  AND (valid_from IS NULL OR valid_from <= $2::date)
	  AND (valid_to IS NULL OR valid_to > $2::date)
	ORDER BY position, ticker
`

// PostgresSource reads index membership from the universe_members table
type PostgresSource struct {
	db Querier
}

// NewPostgresSource creates a database backed membership source
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Tickers returns the members of name as of date, in configured order
func (s *PostgresSource) Tickers(ctx context.Context, name string, asOf contracts.TradingDate) ([]string, error) {
	day, err := time.Parse("2006-01-02", asOf.String())
	if err != nil {
		return nil, fmt.Errorf("invalid membership date %q: %w", asOf, err)
	}

	rows, err := s.db.Query(ctx, membersQuery, name, day)
	if err != nil {
		return nil, fmt.Errorf("query universe members: %w", err)
	}

	tickers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan universe members: %w", err)
	}

	return dedupe(normalize(tickers)), nil
}

// dedupe keeps the first occurrence of each ticker.
// 기간이 겹치는 멤버십 행은 같은 티커를 두 번 돌려줄 수 있다
func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := tickers[:0]
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
