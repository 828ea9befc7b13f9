package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/logger"
	"github.com/twosidesofai/job-hunter/internal/ranking"
	"github.com/twosidesofai/job-hunter/internal/scheduler"
)

const defaultWatchIntervalHours = 6

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the search pipeline on a schedule",
	Long: "Watch runs the fetch, filter, and rank pipeline on a fixed " +
		"interval and processes the top results without prompting.",
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch(cmd *cobra.Command) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.ProfileFile == "" {
		logger.Fatal("candidate profile is required under profile-file")
	}

	interval := defaultWatchIntervalHours
	if config.Watch != nil && config.Watch.IntervalHours > 0 {
		interval = config.Watch.IntervalHours
	}

	sched, err := scheduler.New(func(ctx context.Context) error {
		return runCycle(ctx, config, logger)
	}, interval, logger)
	if err != nil {
		logger.Fatal("creating scheduler", zap.Error(err))
	}

	if err := sched.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	cancel()
	sched.Stop()
}

// runCycle is one unattended pipeline pass: fetch, filter, rank, and process
// the top postings without prompting.
func runCycle(ctx context.Context, config *Config, logger *zap.Logger) error {
	prof, err := loadProfile(config.ProfileFile)
	if err != nil {
		return err
	}

	store := openStore(ctx, config, logger)

	postings, err := fetchPostings(ctx, config, prof, logger)
	if err != nil {
		return err
	}

	if postings.Len() == 0 {
		logger.Info("cycle finished", zap.String("reason", "no postings found"))
		return nil
	}

	filtered, err := runFilters(ctx, nil, config, store, postings, logger)
	if err != nil {
		return err
	}

	if filtered.Len() == 0 {
		logger.Info("cycle finished", zap.String("reason", "no postings left after filters"))
		return nil
	}

	results, err := ranking.Rank(filtered.Items, prof)
	if err != nil {
		return err
	}

	printResults(results, logger)

	if err := draftAndTrack(ctx, config, prof, results, store, logger); err != nil && !errors.Is(err, errExit) {
		return err
	}
	return nil
}
