// Package config loads service configuration from environment variables or
// an optional .env file.
package config

import (
	"github.com/spf13/viper"

	"github.com/ablackman/reviewpulse/internal/llm"
)

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DBPath      string `mapstructure:"DB_PATH"`

	AIAPIKey  string `mapstructure:"AI_API_KEY"`
	AIBaseURL string `mapstructure:"AI_BASE_URL"`
	AIModel   string `mapstructure:"AI_MODEL"`

	// AnalyzeBatchLimit caps reviews per analysis run; 0 runs the whole
	// backlog in one go.
	AnalyzeBatchLimit int `mapstructure:"ANALYZE_BATCH_LIMIT"`

	LogFile string `mapstructure:"LOG_FILE"`
}

// Load reads configuration from path/.env when present, otherwise from the
// environment. A missing config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_PATH", "out/reviews.db")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_BASE_URL", llm.DefaultBaseURL)
	v.SetDefault("AI_MODEL", "gpt-4.1-mini")
	v.SetDefault("ANALYZE_BATCH_LIMIT", 0)
	v.SetDefault("LOG_FILE", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
