package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/mag7-collector/internal/scheduler"
	"github.com/wonny/mag7-collector/internal/scheduler/jobs"
	"github.com/wonny/mag7-collector/internal/tradingday"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `정기 수집 스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- market_data_collection: COLLECT_SCHEDULE (기본 화-토 06:00, MARKET_TIMEZONE 기준)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행 (동기)

Example:
  go run ./cmd/collector scheduler start
  go run ./cmd/collector scheduler list
  go run ./cmd/collector scheduler run market_data_collection`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Market Data Scheduler ===")

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a, a.handler)
	if err != nil {
		return err
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a, a.handler)
	if err != nil {
		return err
	}

	// cron 엔트리의 Next는 Start 이후에 계산됨
	sched.Start()
	defer sched.Stop()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a, a.handler)
	if err != nil {
		return err
	}

	fmt.Printf("Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.RunNow(ctx, jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("✅ Job completed")
	return nil
}

// newScheduler registers the collection job on a scheduler in the market time zone
func newScheduler(a *app, trigger jobs.Trigger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(tradingday.LoadLocation(a.cfg.MarketTimezone), a.log)

	if err := sched.AddJob(jobs.NewCollectionJob(trigger, a.cfg.CollectSchedule, a.log)); err != nil {
		return nil, fmt.Errorf("register collection job: %w", err)
	}
	return sched, nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.Stats()

	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		st := stats[name]
		fmt.Printf("  - %s (%s)", name, st.Schedule)
		if st.NextRun != nil {
			fmt.Printf(" next: %s", st.NextRun.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Println()
	}
}
