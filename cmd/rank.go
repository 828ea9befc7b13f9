package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/logger"
	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank [postings.json]",
	Short: "Rank postings from a JSON file against the candidate profile",
	Long: "Rank reads postings from a JSON file and scores them against the " +
		"configured candidate profile. It needs no network access, API keys, " +
		"or database.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(args[0])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func rank(postingsFile string) {
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

	prof, err := loadProfile(config.ProfileFile)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	postings, err := posting.FromFile(postingsFile)
	if err != nil {
		logger.Fatal("loading postings", zap.Error(err))
	}

	results, err := ranking.Rank(postings.Items, prof)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	for _, result := range results {
		fmt.Printf("%3d  %s at %s\n", result.Score, result.Posting.Title, result.Posting.Company)
		if result.Posting.URL != "" {
			fmt.Printf("     %s\n", result.Posting.URL)
		}
		if len(result.Rationale) > 0 {
			fmt.Printf("     %s\n", strings.Join(result.Messages(), "; "))
		}
	}
}
