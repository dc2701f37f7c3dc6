package cmd

import (
	"log"
	"time"

	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/pipeline"
	"github.com/jobsift/jobsift/internal/ratelimit"
	"github.com/jobsift/jobsift/internal/secrets"
	"github.com/jobsift/jobsift/internal/source"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "jobsift"

type Config struct {
	// Profile is the path to the candidate's plain-text résumé.
	Profile string             `mapstructure:"profile" validate:"required"`
	Search  source.SearchTerms `mapstructure:"search"`

	Sources     *SourcesConfig              `mapstructure:"sources"`
	RateLimits  map[string]ratelimit.Config `mapstructure:"rate-limits"`
	Acquirer    *source.AcquirerConfig      `mapstructure:"acquirer"`
	Cache       CacheConfig                 `mapstructure:"cache"`
	Matching    MatchingConfig              `mapstructure:"matching"`
	Preferences pipeline.Preferences        `mapstructure:"preferences"`
	Pipeline    pipeline.Config             `mapstructure:"pipeline"`
	Watch       WatchConfig                 `mapstructure:"watch"`
}

type SourcesConfig struct {
	// Enabled selects the sources to query. Empty means all known sources.
	Enabled []string                       `mapstructure:"enabled" validate:"dive,oneof=remotive hackernews weworkremotely"`
	Tokens  map[string]secrets.TokenSource `mapstructure:"tokens"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxSize  int64         `mapstructure:"max-size" validate:"gte=0"`
	RedisURL string        `mapstructure:"redis-url" validate:"required_if=Backend redis"`
}

type MatchingConfig struct {
	Weights    *match.Weights    `mapstructure:"weights"`
	Thresholds *match.Thresholds `mapstructure:"thresholds"`
}

type WatchConfig struct {
	// Schedule is a cron expression; descriptors like "@every 1h" work too.
	Schedule string `mapstructure:"schedule"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsift searches remote job boards and ranks postings against your résumé",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Secrets and overrides may come from a local .env file.
	_ = godotenv.Load()

	// Config is needed only for the run and watch commands.
	if runCmd.CalledAs() == "" && watchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
