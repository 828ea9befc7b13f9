package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/logger"
	"github.com/twosidesofai/job-hunter/internal/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Inspect and update tracked applications",
}

var trackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *tracker.Store, logger *zap.Logger) error {
			filter := tracker.Status("")
			if raw := cmd.Flag("status").Value.String(); raw != "" {
				parsed, err := tracker.ParseStatus(raw)
				if err != nil {
					return err
				}
				filter = parsed
			}

			apps, err := store.List(ctx, filter)
			if err != nil {
				return err
			}

			for _, app := range apps {
				fmt.Printf("%s  %-20s  %s at %s (score %d)\n",
					app.ID, app.Status, app.Title, app.Company, app.Score)
			}
			return nil
		})
	},
}

var trackSetCmd = &cobra.Command{
	Use:   "set <id> <status>",
	Short: "Move an application to a new status",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *tracker.Store, logger *zap.Logger) error {
			status, err := tracker.ParseStatus(args[1])
			if err != nil {
				return err
			}

			app, err := store.UpdateStatus(ctx, args[0], status)
			if err != nil {
				return err
			}

			fmt.Printf("%s is now %s\n", app.ID, app.Status)
			return nil
		})
	},
}

var trackNoteCmd = &cobra.Command{
	Use:   "note <id> <text>",
	Short: "Set the note on an application",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *tracker.Store, _ *zap.Logger) error {
			_, err := store.AddNote(ctx, args[0], args[1])
			return err
		})
	},
}

var trackReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show how many applications sit at each status",
	Run: func(_ *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, store *tracker.Store, _ *zap.Logger) error {
			counts, err := store.CountsByStatus(ctx)
			if err != nil {
				return err
			}

			for _, status := range tracker.AllStatuses() {
				fmt.Printf("%-20s %d\n", status, counts[status])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackListCmd, trackSetCmd, trackNoteCmd, trackReportCmd)

	trackListCmd.Flags().String("status", "", "only show applications at this status")
}

// withStore runs fn against a connected tracker store. Unlike run, a missing
// database configuration is fatal here since tracking is the whole point.
func withStore(fn func(ctx context.Context, store *tracker.Store, logger *zap.Logger) error) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	databaseURL := viper.GetString("tracker.database-url")
	if databaseURL == "" {
		logger.Fatal("tracker database is not configured",
			zap.String("hint", "set tracker.database-url or DATABASE_URL"),
		)
	}

	pool, err := tracker.NewPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("connecting to the tracker database", zap.Error(err))
	}
	defer pool.Close()

	store := tracker.NewStore(pool, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("preparing the tracker schema", zap.Error(err))
	}

	if err := fn(ctx, store, logger); err != nil {
		logger.Fatal("track command failed", zap.Error(err))
	}
}
