package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the client binaries need to reach the backend and
// persist session tokens.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	PageSize       int           `mapstructure:"page_size"`

	// Token persistence: file path by default, Redis when addr is set.
	TokenFile string `mapstructure:"token_file"`
	RedisAddr string `mapstructure:"redis_addr"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads shopfront.yaml from the given directory (or the working
// directory when empty) and applies SHOPFRONT_* environment overrides.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("shopfront")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetDefault("base_url", "http://localhost:8000")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("requests_per_sec", 20.0)
	v.SetDefault("page_size", 12)
	v.SetDefault("token_file", ".shopfront-tokens.json")
	v.SetDefault("redis_addr", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("SHOPFRONT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 12
	}
	return cfg, nil
}
