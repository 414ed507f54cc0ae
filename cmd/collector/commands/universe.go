package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/mag7-collector/internal/universe"
	"github.com/wonny/mag7-collector/pkg/httputil"
)

// universeCmd manages the ticker lists a run collects
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "수집 대상 종목 관리",
	Long: `서브그룹/지수 종목 목록을 조회하거나 외부 소스에서 지수 구성 종목을 추출합니다.

Subcommands:
  show             - 현재 설정된 universe 출력
  filter-holdings  - 펀드 보유종목 CSV에서 주식 티커 추출
  fetch-html       - 구성 종목 HTML 페이지에서 티커 추출

--as-universe 플래그를 주면 현재 서브그룹과 합쳐 UNIVERSE_FILE로 쓸 수 있는 YAML을 출력합니다.

Example:
  go run ./cmd/collector universe show
  go run ./cmd/collector universe filter-holdings holdings.csv --as-universe > universe.yaml
  go run ./cmd/collector universe fetch-html https://example.com/constituents`,
}

var (
	universeShowCmd = &cobra.Command{
		Use:   "show",
		Short: "현재 universe 출력",
		RunE:  runUniverseShow,
	}

	universeHoldingsCmd = &cobra.Command{
		Use:   "filter-holdings [csv_file]",
		Short: "보유종목 CSV에서 티커 추출",
		Args:  cobra.ExactArgs(1),
		RunE:  runUniverseHoldings,
	}

	universeHTMLCmd = &cobra.Command{
		Use:   "fetch-html [url]",
		Short: "HTML 구성 종목 표에서 티커 추출",
		Args:  cobra.ExactArgs(1),
		RunE:  runUniverseHTML,
	}
)

var (
	universeAsYAML bool
	universeColumn string
)

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeShowCmd)
	universeCmd.AddCommand(universeHoldingsCmd)
	universeCmd.AddCommand(universeHTMLCmd)

	universeCmd.PersistentFlags().BoolVar(&universeAsYAML, "as-universe", false, "print a universe YAML with these tickers as the index")
	universeHTMLCmd.Flags().StringVar(&universeColumn, "column", universe.DefaultSymbolColumn, "header of the ticker column")
}

func runUniverseShow(cmd *cobra.Command, args []string) error {
	u, err := currentUniverse()
	if err != nil {
		return err
	}
	return printYAML(u)
}

func runUniverseHoldings(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open holdings: %w", err)
	}
	defer f.Close()

	tickers, err := universe.FilterHoldingsCSV(f)
	if err != nil {
		return err
	}
	return printTickers(tickers)
}

func runUniverseHTML(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	client := httputil.New(log, cfg.Polygon.HTTPTimeout)
	tickers, err := universe.FetchConstituents(commandContext(cmd), client, args[0], universeColumn)
	if err != nil {
		return err
	}
	return printTickers(tickers)
}

func currentUniverse() (*universe.Universe, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	u, err := universe.Load(cfg.UniverseFile)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	return u, nil
}

func printTickers(tickers []string) error {
	if !universeAsYAML {
		for _, t := range tickers {
			fmt.Println(t)
		}
		fmt.Fprintf(os.Stderr, "%d tickers\n", len(tickers))
		return nil
	}

	u, err := currentUniverse()
	if err != nil {
		return err
	}
	return printYAML(u.WithIndex(tickers))
}

func printYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
