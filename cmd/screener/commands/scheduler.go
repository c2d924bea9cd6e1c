package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/scheduler"
	"github.com/wonny/screener/internal/scheduler/jobs"
	"github.com/wonny/screener/internal/universe"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Recurring screening",
	Long: `Runs the screening on SCHEDULE_CRON (seconds field included).

Subcommands:
  start   - start the scheduler daemon
  list    - registered jobs and their next run
  run     - run a job now and wait for it

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler run equity_screening`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers the screening job.

Registered jobs:
- equity_screening: SCHEDULE_CRON (default weekdays 17:30)

Stop with Ctrl+C; a running job is cancelled and writes partial results.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerMode string
	schedulerMax  int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerMode, "mode", string(universe.ModeAuto), "universe mode for scheduled runs")
	schedulerCmd.PersistentFlags().IntVar(&schedulerMax, "max-stocks", 0, "maximum tickers (default from strategy)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equity Screener Scheduler ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	defer sched.Stop()
	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("%s in %.1fs (%d attempt(s))", result.Details, result.Duration.Seconds(), result.Attempts))
	return nil
}

func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	template := brain.RunConfig{
		Mode:      universe.Mode(schedulerMode),
		MaxStocks: schedulerMax,
		OutputDir: d.cfg.OutputDir,
	}

	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewScreeningJob(d.orch, template, d.cfg.ScheduleCron, d.log)); err != nil {
		return nil, err
	}
	return sched, nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		stats := sched.GetJobStats()[jobName]
		fmt.Printf("  - %s (%s), next run %s\n", jobName, stats.Schedule, formatNext(next))
	}
}

func formatNext(t time.Time) string {
	if t.IsZero() {
		return "not scheduled"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}
