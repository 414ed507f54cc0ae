package main

import (
	"os"

	_ "time/tzdata"

	"github.com/wonny/mag7-collector/cmd/collector/commands"
)

// main is the entry point for the collector CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/collector [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
