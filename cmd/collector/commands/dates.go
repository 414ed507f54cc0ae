package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/tradingday"
	"github.com/wonny/mag7-collector/pkg/config"
)

// datesCmd groups the trading-date generators used for backfills
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "백필용 거래일 목록 생성",
	Long: `백필(backfill)에 사용할 거래일 목록을 최신순으로 출력합니다.

Subcommands:
  range     - start(제외) ~ end(포함) 구간
  lookback  - 오늘(포함)부터 N일 전(제외)까지

Example:
  go run ./cmd/collector dates range
  go run ./cmd/collector dates range --start 2023-12-31 --end 2024-03-31
  go run ./cmd/collector dates lookback --days 30 --holidays XNYS`,
}

var (
	datesRangeCmd = &cobra.Command{
		Use:   "range",
		Short: "구간 거래일 목록",
		RunE:  runDatesRange,
	}

	datesLookbackCmd = &cobra.Command{
		Use:   "lookback",
		Short: "최근 N일 거래일 목록",
		RunE:  runDatesLookback,
	}
)

var (
	datesStart    string
	datesEnd      string
	datesDays     int
	datesHolidays string
	datesJSON     bool
)

func init() {
	rootCmd.AddCommand(datesCmd)
	datesCmd.AddCommand(datesRangeCmd)
	datesCmd.AddCommand(datesLookbackCmd)

	datesCmd.PersistentFlags().StringVar(&datesHolidays, "holidays", "", "exchange calendar MIC (e.g. XNYS); default: weekdays only")
	datesCmd.PersistentFlags().BoolVar(&datesJSON, "json", false, "print a JSON array")

	datesRangeCmd.Flags().StringVar(&datesStart, "start", tradingday.DefaultRangeStart.Format(tradingday.DateLayout), "exclusive lower bound")
	datesRangeCmd.Flags().StringVar(&datesEnd, "end", tradingday.DefaultRangeEnd.Format(tradingday.DateLayout), "inclusive upper bound")

	datesLookbackCmd.Flags().IntVar(&datesDays, "days", tradingday.DefaultLookbackDays, "calendar days to look back")
}

func runDatesRange(cmd *cobra.Command, args []string) error {
	start, err := time.Parse(tradingday.DateLayout, datesStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse(tradingday.DateLayout, datesEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	seq, _, err := newSequencer()
	if err != nil {
		return err
	}

	return printDates(seq.Range(start, end))
}

func runDatesLookback(cmd *cobra.Command, args []string) error {
	if datesDays < 0 {
		return fmt.Errorf("--days must not be negative")
	}

	seq, cfg, err := newSequencer()
	if err != nil {
		return err
	}

	resolver := tradingday.NewResolver(tradingday.LoadLocation(cfg.MarketTimezone), nil)
	return printDates(seq.Lookback(resolver.Now(), datesDays))
}

func newSequencer() (*tradingday.Sequencer, *config.Config, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	mic := datesHolidays
	if mic == "" {
		mic = cfg.MarketCalendar
	}

	var opts []tradingday.Option
	if mic != "" {
		filter, err := tradingday.HolidayFilter(mic)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, tradingday.WithFilter(filter))
	}

	return tradingday.NewSequencer(log, opts...), cfg, nil
}

func printDates(dates []contracts.TradingDate) error {
	if datesJSON {
		return printJSON(dates)
	}
	for _, d := range dates {
		fmt.Println(d)
	}
	return nil
}
