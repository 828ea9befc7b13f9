package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/ai"
	"github.com/twosidesofai/job-hunter/internal/ai/gemini"
	"github.com/twosidesofai/job-hunter/internal/export"
	"github.com/twosidesofai/job-hunter/internal/fetch"
	"github.com/twosidesofai/job-hunter/internal/filtering"
	"github.com/twosidesofai/job-hunter/internal/logger"
	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/profile"
	"github.com/twosidesofai/job-hunter/internal/ranking"
	"github.com/twosidesofai/job-hunter/internal/secrets"
	"github.com/twosidesofai/job-hunter/internal/suggest"
	"github.com/twosidesofai/job-hunter/internal/tracker"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptReportByCompany     = "Report by company"
	PromptPostingsToFile      = "Dump postings to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"

	defaultTopN = 3
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed with the top ranked postings?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptPostingsToFile, PromptAppendToExcludeFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search boards, rank postings, and draft application materials",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude postings already applied to")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before drafting materials")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-hunter", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.ProfileFile == "" {
		logger.Fatal("candidate profile is required under profile-file")
	}

	prof, err := loadProfile(config.ProfileFile)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	logger.Info("loaded candidate profile",
		zap.String("name", prof.Name),
		zap.Int("skills", len(prof.Skills)),
	)

	store := openStore(ctx, config, logger)

	postings, err := fetchPostings(ctx, config, prof, logger)
	if err != nil {
		logger.Fatal("fetching postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	filtered, err := runFilters(ctx, cmd, config, store, postings, logger)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	postings = filtered

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	results, err := ranking.Rank(postings.Items, prof)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	printResults(results, logger)

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", postings.Len()))

		if err := handleAction(ctx, action, config, prof, postings, results, store, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, config *Config, prof *profile.CandidateProfile, postings *posting.Postings, results []*ranking.Result, store *tracker.Store, logger *zap.Logger) error {
	switch action {
	case PromptYes:
		return draftAndTrack(ctx, config, prof, results, store, logger)
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(postings.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excludeFile := viper.GetString("exclude-file")
		if excludeFile == "" {
			excludeFile = config.ExcludeFile
		}
		if excludeFile == "" {
			return errors.New("exclude file is not configured")
		}

		excluded, err := posting.LoadExcluded(excludeFile)
		if err != nil {
			return err
		}

		excluded.Append(postings.ToExcluded())

		if err = excluded.ToFile(excludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", excludeFile))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// draftAndTrack walks the top ranked postings, drafts materials for each one
// when AI is enabled, exports them, and records the application.
func draftAndTrack(ctx context.Context, config *Config, prof *profile.CandidateProfile, results []*ranking.Result, store *tracker.Store, logger *zap.Logger) error {
	topN := defaultTopN
	if config.Search != nil && config.Search.TopN > 0 {
		topN = config.Search.TopN
	}
	if topN > len(results) {
		topN = len(results)
	}

	drafter, err := newDrafter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("drafting disabled", zap.Error(err))
	}

	exporter, err := newExporter(config.Export, logger)
	if err != nil {
		return err
	}

	for _, result := range results[:topN] {
		post := result.Posting

		logger.Info("processing posting",
			zap.String("title", post.Title),
			zap.String("company", post.Company),
			zap.Int("score", result.Score),
			zap.Strings("rationale", result.Messages()),
		)

		if drafter != nil {
			bundle, err := draftBundle(ctx, drafter, prof, post, result)
			if err != nil {
				return fmt.Errorf("drafting for %s: %w", post.URL, err)
			}

			if _, err := exporter.Write(post, bundle); err != nil {
				return fmt.Errorf("exporting for %s: %w", post.URL, err)
			}
		}

		if store != nil {
			if _, err := store.Track(ctx, post, result.Score); err != nil {
				return fmt.Errorf("tracking %s: %w", post.URL, err)
			}
		}
	}

	logger.Info("processed top postings", zap.Int("count", topN))
	return errExit
}

func draftBundle(ctx context.Context, drafter ai.Drafter, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (*export.Bundle, error) {
	resume, err := drafter.TailorResume(ctx, prof, post, result)
	if err != nil {
		return nil, fmt.Errorf("tailor resume: %w", err)
	}

	letter, err := drafter.DraftCoverLetter(ctx, prof, post, result)
	if err != nil {
		return nil, fmt.Errorf("draft cover letter: %w", err)
	}

	return &export.Bundle{Resume: resume, CoverLetter: letter}, nil
}

func printResults(results []*ranking.Result, logger *zap.Logger) {
	for _, result := range results {
		logger.Info("ranked posting",
			zap.Int("score", result.Score),
			zap.String("title", result.Posting.Title),
			zap.String("company", result.Posting.Company),
			zap.String("url", result.Posting.URL),
			zap.Strings("rationale", result.Messages()),
		)
	}
}

// loadProfile picks the loader by extension: structured JSON documents load
// directly, anything else goes through the plain-text resume parser.
func loadProfile(path string) (*profile.CandidateProfile, error) {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return profile.FromFile(path)
	}
	return profile.ParseTextFile(path)
}

// openStore connects the tracker store when a database URL is configured.
// Tracking is optional and a missing database only logs a line.
func openStore(ctx context.Context, config *Config, logger *zap.Logger) *tracker.Store {
	if config.Tracker == nil || strings.TrimSpace(config.Tracker.DatabaseURL) == "" {
		logger.Info("application tracking disabled", zap.String("reason", "no database url configured"))
		return nil
	}

	pool, err := tracker.NewPool(ctx, config.Tracker.DatabaseURL)
	if err != nil {
		logger.Warn("application tracking disabled", zap.Error(err))
		return nil
	}

	store := tracker.NewStore(pool, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Warn("application tracking disabled", zap.Error(err))
		return nil
	}

	return store
}

// fetchPostings queries every enabled board and deduplicates the combined
// results. When no boards are configured it logs suggestions instead.
func fetchPostings(ctx context.Context, config *Config, prof *profile.CandidateProfile, logger *zap.Logger) (*posting.Postings, error) {
	registry, err := buildRegistry(config, logger)
	if err != nil {
		return nil, err
	}

	boards := enabledBoards(config)
	if len(boards) == 0 {
		suggestBoards(prof, logger)
		return &posting.Postings{}, nil
	}

	query := buildQuery(config, prof)
	logger.Info("starting the search",
		zap.String("keywords", query.Text()),
		zap.Strings("boards", boards),
	)

	combined := &posting.Postings{}
	for _, name := range boards {
		source, err := registry.Lookup(name)
		if err != nil {
			return nil, err
		}

		items, err := source.Fetch(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", name, err)
		}

		logger.Info("board results", zap.String("board", name), zap.Int("count", len(items)))
		combined.Items = append(combined.Items, items...)
	}

	deduper, err := newDeduper(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	dropped, err := deduper.Filter(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("dedupe: %w", err)
	}
	if err := deduper.Remember(ctx, combined); err != nil {
		logger.Warn("remembering postings in dedup cache", zap.Error(err))
	}

	logger.Info("getting postings", zap.Int("count", combined.Len()), zap.Int("duplicates dropped", dropped))
	return combined, nil
}

func buildQuery(config *Config, prof *profile.CandidateProfile) fetch.Query {
	query := fetch.Query{SkillVocabulary: prof.Skills}

	if config.Search != nil {
		query.Keywords = config.Search.Keywords
		query.Location = config.Search.Location
		query.Limit = config.Search.Limit
	}

	if len(query.Keywords) == 0 {
		query.Keywords = prof.JobPrefs.Titles
	}
	if query.Location == "" && len(prof.JobPrefs.Locations) > 0 {
		query.Location = prof.JobPrefs.Locations[0]
	}

	return query
}

func buildRegistry(config *Config, logger *zap.Logger) (*fetch.Registry, error) {
	registry := fetch.NewRegistry(fetch.NewRemotiveSource(logger))

	var appID, appKey, country string
	if config.Boards != nil && config.Boards.Adzuna != nil {
		var err error
		appID, appKey, err = resolveAdzunaCreds(config.Boards.Adzuna)
		if err != nil {
			return nil, err
		}
		country = config.Boards.Adzuna.Country
	}
	registry.Register(fetch.NewAdzunaSource(appID, appKey, country, logger))

	var filePath string
	if config.Boards != nil && config.Boards.File != nil {
		filePath = config.Boards.File.Path
	}
	registry.Register(fetch.NewFileSource(filePath, logger))

	return registry, nil
}

func enabledBoards(config *Config) []string {
	if config.Boards == nil {
		return nil
	}
	return config.Boards.Enabled
}

func suggestBoards(prof *profile.CandidateProfile, logger *zap.Logger) {
	suggester := suggest.NewSuggester(nil, logger)
	suggestions, err := suggester.Suggest(prof, 0)
	if err != nil {
		logger.Warn("computing board suggestions", zap.Error(err))
		return
	}

	pretty, _ := json.MarshalIndent(suggestions, "", "  ")
	logger.Info("no boards enabled, consider these",
		zap.String("hint", "set boards.enabled in the configuration file"),
	)
	logger.Info(string(pretty))
}

func newDeduper(ctx context.Context, config *Config, logger *zap.Logger) (*fetch.Deduper, error) {
	if config.Dedupe == nil || strings.TrimSpace(config.Dedupe.RedisURL) == "" {
		return fetch.NewDeduper(nil, logger), nil
	}

	rdb, err := fetch.NewRedisClient(ctx, config.Dedupe.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return fetch.NewDeduper(rdb, logger), nil
}

func runFilters(ctx context.Context, cmd *cobra.Command, config *Config, store *tracker.Store, postings *posting.Postings, logger *zap.Logger) (*posting.Postings, error) {
	cfg := &filtering.Config{}
	if config.Filters != nil {
		cfg.RedFlags = config.Filters.RedFlags
		cfg.ExcludeCompanies = config.Filters.ExcludeCompanies
		cfg.SalaryFloor = config.Filters.SalaryFloor
	}

	cfg.ExcludeFile = viper.GetString("exclude-file")
	if cfg.ExcludeFile == "" {
		cfg.ExcludeFile = config.ExcludeFile
	}

	deps := filtering.Deps{Logger: logger}
	if store != nil {
		deps.History = store
	}

	steps := []filtering.Filter{
		filtering.NewRedFlags(),
		filtering.NewCompanies(),
		filtering.NewExcludeFile(),
		filtering.NewAppliedHistory(),
		filtering.NewSalaryFloor(),
	}

	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			filtering.DisableByName(steps, "applied_history", "do-not-exclude-applied flag is set")
		}
	}

	return filtering.Run(ctx, cfg, deps, steps, postings)
}

func newDrafter(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Drafter, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai drafting is not enabled in the configuration")
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai drafting is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewDrafter(generator, cfg.Gemini.MaxLogLength, genLogger), nil
}

func newExporter(cfg *ExportConfig, logger *zap.Logger) (*export.Exporter, error) {
	dir := "applications"
	rawFormat := ""
	if cfg != nil {
		if cfg.Dir != "" {
			dir = cfg.Dir
		}
		rawFormat = cfg.Format
	}

	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	return export.NewExporter(dir, format, logger), nil
}

func resolveAdzunaCreds(cfg *AdzunaBoardConfig) (string, string, error) {
	if cfg.AppIDFile == "" || cfg.AppKeyFile == "" {
		return "", "", nil
	}

	appID, err := secrets.Load(secrets.Source{Name: "adzuna app id", File: cfg.AppIDFile})
	if err != nil {
		return "", "", err
	}

	appKey, err := secrets.Load(secrets.Source{Name: "adzuna app key", File: cfg.AppKeyFile})
	if err != nil {
		return "", "", err
	}

	return appID, appKey, nil
}
