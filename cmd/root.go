package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "job-hunter"
)

type Config struct {
	ProfileFile string         `mapstructure:"profile-file"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	Search      *SearchConfig  `mapstructure:"search"`
	Boards      *BoardsConfig  `mapstructure:"boards"`
	Dedupe      *DedupeConfig  `mapstructure:"dedupe"`
	Filters     *FiltersConfig `mapstructure:"filters"`
	AI          *AIConfig      `mapstructure:"ai"`
	Export      *ExportConfig  `mapstructure:"export"`
	Tracker     *TrackerConfig `mapstructure:"tracker"`
	Watch       *WatchConfig   `mapstructure:"watch"`
}

type SearchConfig struct {
	Keywords []string `mapstructure:"keywords"`
	Location string   `mapstructure:"location"`
	Limit    int      `mapstructure:"limit"`
	TopN     int      `mapstructure:"top-n"`
}

type BoardsConfig struct {
	Enabled []string           `mapstructure:"enabled"`
	Adzuna  *AdzunaBoardConfig `mapstructure:"adzuna"`
	File    *FileBoardConfig   `mapstructure:"file"`
}

type AdzunaBoardConfig struct {
	AppIDFile  string `mapstructure:"app-id-file"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
}

type FileBoardConfig struct {
	Path string `mapstructure:"path"`
}

type DedupeConfig struct {
	RedisURL string `mapstructure:"redis-url"`
}

type FiltersConfig struct {
	RedFlags         []string `mapstructure:"red-flags"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	SalaryFloor      int      `mapstructure:"salary-floor"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type TrackerConfig struct {
	DatabaseURL string `mapstructure:"database-url"`
}

type WatchConfig struct {
	IntervalHours int `mapstructure:"interval-hours"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-hunter searches job boards, ranks postings against your profile, and drafts application materials",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("tracker.database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("dedupe.redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-hunter.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		return
	} else if runCmd.CalledAs() != "" || watchCmd.CalledAs() != "" || rankCmd.CalledAs() != "" {
		// The pipeline commands can't proceed without a parseable config.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
