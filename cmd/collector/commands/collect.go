package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// collectCmd runs one collection and prints the response envelope
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "단일 거래일 수집 실행",
	Long: `지정한 거래일(또는 직전 거래일)의 스냅샷을 수집해 저장합니다.

출력은 트리거 응답 envelope(JSON)이며, 실패 시 종료 코드는 1입니다.

Example:
  go run ./cmd/collector collect
  go run ./cmd/collector collect --date 2024-01-05
  go run ./cmd/collector collect --payload '{"trading_date":"2024-01-05"}'`,
	RunE: runCollect,
}

var (
	collectDate    string
	collectPayload string
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectDate, "date", "", "trading date (YYYY-MM-DD), default: previous trading day")
	collectCmd.Flags().StringVar(&collectPayload, "payload", "", "raw trigger payload (JSON)")
	collectCmd.MarkFlagsMutuallyExclusive("date", "payload")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	payload := []byte(collectPayload)
	if collectDate != "" {
		payload, err = json.Marshal(collectDate)
		if err != nil {
			return fmt.Errorf("encode date: %w", err)
		}
	}

	resp := a.handler.Handle(ctx, payload)

	if err := printJSON(resp); err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("collection failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext returns ctx or Background when cobra ran without one
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
