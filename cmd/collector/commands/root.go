package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/mag7-collector/pkg/config"
	"github.com/wonny/mag7-collector/pkg/logger"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Market-cap concentration collector",
	Long: `Market-cap concentration collector

지수 전체 시가총액과 서브그룹(Magnificent 7) 시가총액을 하루 단위로 수집해
순위와 비중을 계산한 스냅샷을 오브젝트 스토리지에 저장합니다.

Usage:
  go run ./cmd/collector [command]

Examples:
  go run ./cmd/collector collect
  go run ./cmd/collector collect --date 2024-01-05
  go run ./cmd/collector dates lookback --days 30
  go run ./cmd/collector api --with-scheduler`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "additional .env file loaded before the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads configuration and builds the logger for a command
func loadConfig() (*config.Config, *logger.Logger, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err != nil {
			return nil, nil, fmt.Errorf("env file: %w", err)
		}
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
