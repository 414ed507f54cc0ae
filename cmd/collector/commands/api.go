package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/mag7-collector/internal/api"
	"github.com/wonny/mag7-collector/internal/api/handlers"
	"github.com/wonny/mag7-collector/internal/api/stream"
	"github.com/wonny/mag7-collector/internal/collector"
	"github.com/wonny/mag7-collector/internal/scheduler"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "HTTP 트리거 서버 시작",
	Long: `수집 트리거용 HTTP 서버를 시작합니다.

Endpoints:
  GET  /health                    - Health check
  POST /api/collect               - 수집 실행 (body: 트리거 payload)
  GET  /api/trading-date          - 자동 수집 기준일
  GET  /api/runs/stream           - 실행 결과 WebSocket 스트림
  GET  /api/jobs                  - 스케줄러 작업 통계 (--with-scheduler)
  GET  /api/jobs/{name}/history   - 작업 실행 이력 (--with-scheduler)

Example:
  go run ./cmd/collector api
  go run ./cmd/collector api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the collection scheduler in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Data Collector API ===")

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 모든 실행(API, 스케줄러) 결과를 스트림 구독자에게 전달
	hub := stream.NewHub(a.log)
	defer hub.Close()

	// HTTP와 스케줄러가 하나의 실행 슬롯을 공유
	gate := collector.NewRunGate(stream.Notify(a.handler, hub))

	h := api.Handlers{
		Collect: handlers.NewCollectHandler(gate, a.resolver, a.log),
		Health:  handlers.NewHealthHandler("mag7-collector", nil),
		Stream:  hub,
	}
	// nil *database.DB를 인터페이스에 넣지 않도록 분기
	if a.db != nil {
		h.Health = handlers.NewHealthHandler("mag7-collector", a.db)
	}

	var sched *scheduler.Scheduler
	if apiWithScheduler {
		sched, err = newScheduler(a, gate)
		if err != nil {
			return err
		}
		sched.Start()

		h.Jobs = handlers.NewJobsHandler(sched)
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Error("API server stopped")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 진행 중인 수집 요청이 있으면 Shutdown은 타임아웃으로 끝남
	if err := server.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	// 스케줄 실행은 취소하고 종료를 기다림
	if sched != nil {
		sched.Stop()
	}

	drainCollection(gate, a)

	a.log.Info("Server stopped")
	return nil
}

// drainCollection keeps the shared clients open until an in-flight HTTP run
// finishes; a second interrupt abandons it
func drainCollection(gate *collector.RunGate, a *app) {
	if gate.Running() {
		a.log.Warn("Waiting for in-flight collection run to finish (press Ctrl+C again to abandon)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gate.Drain(ctx); err != nil {
		a.log.WithError(err).Warn("Abandoned in-flight collection run; no envelope or run event was produced")
	}
}
