package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the background job scheduler",
	Long:  `Run the recurring maintenance jobs: cancelled-request cleanup, invite expiry and year-end balance rollover.`,
	Run: func(cmd *cobra.Command, args []string) {
		startScheduler()
	},
}

func startScheduler() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	c := cron.New()

	// delete cancelled requests older than a month, on the first of each month
	_, err = c.AddFunc("0 2 1 * *", func() {
		deleted, err := deps.LeaveService.PurgeCancelled(30 * 24 * time.Hour)
		if err != nil {
			lg.Error("cancelled-request purge failed", "error", err)
			return
		}
		lg.Info("cancelled-request purge complete", "deleted", deleted)
	})
	if err != nil {
		lg.Error("failed to schedule purge job", "error", err)
		os.Exit(1)
	}

	// sweep unaccepted invites past their 7-day window
	_, err = c.AddFunc("@hourly", func() {
		expired, err := deps.AuthService.ExpireStaleInvites(context.Background())
		if err != nil {
			lg.Error("invite sweep failed", "error", err)
			return
		}
		if expired > 0 {
			lg.Info("invite sweep complete", "expired", expired)
		}
	})
	if err != nil {
		lg.Error("failed to schedule invite sweep", "error", err)
		os.Exit(1)
	}

	// year-end rollover: carry forward earned leave, reset the rest
	_, err = c.AddFunc("30 0 1 1 *", func() {
		year := time.Now().Year() - 1
		if err := deps.BalanceService.ProcessYearEnd(year); err != nil {
			lg.Error("year-end rollover failed", "year", year, "error", err)
			return
		}
		lg.Info("year-end rollover complete", "year", year)
	})
	if err != nil {
		lg.Error("failed to schedule year-end rollover", "error", err)
		os.Exit(1)
	}

	c.Start()
	lg.Info("scheduler started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, stopping scheduler", "signal", sig)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		lg.Warn("shutdown timeout reached while waiting for running jobs")
	}

	if err := deps.DB.Close(); err != nil {
		lg.Error("database close error", "error", err)
	}
	lg.Info("scheduler stopped")
}
