package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jobsift/jobsift/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultWatchSchedule = "@every 1h"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run search cycles on a schedule until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	schedule := config.Watch.Schedule
	if schedule == "" {
		schedule = defaultWatchSchedule
	}

	cycle := func() {
		ranked, err := a.pipeline.RunCycle(ctx, a.candidate, a.candidateHash)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("search cycle failed", zap.Error(err))
			return
		}
		printRanked(ranked, viper.GetInt("limit"), true)
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, cycle); err != nil {
		logger.Fatal("invalid watch schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	logger.Info("starting watch mode", zap.String("schedule", schedule))

	// First cycle runs right away, the scheduler covers the rest.
	cycle()
	c.Start()

	<-ctx.Done()
	logger.Info("shutting down watch mode")

	stopCtx := c.Stop()
	<-stopCtx.Done()
}
