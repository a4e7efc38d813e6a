package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rswy/investment-analysis/internal/pipeline"
	"github.com/rswy/investment-analysis/internal/scheduler"
	"github.com/rswy/investment-analysis/internal/scheduler/jobs"
)

// scheduleCmd runs the pipeline as a recurring scheduled job
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on its recurring schedule",
	Long: `Starts the scheduler daemon and registers the pipeline job on the
configured cron schedule (PIPELINE_SCHEDULE, default 06:00 on the first
of every month).

Failed runs are retried before giving up until the next cycle.
Stop with Ctrl+C.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	sched := scheduler.New(log)
	job := jobs.NewPipelineJob(pipeline.New(cfg, log, db), cfg.Schedule, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register pipeline job: %w", err)
	}

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down scheduler...")
	sched.Stop()

	return nil
}
