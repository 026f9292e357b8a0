package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API and pipeline binaries.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string

	OpenAIAPIKey string
	OpenAIModel  string

	SESRegion string
	EmailFrom string

	ClassifyBatchSize  int
	ClassifyBatchDelay time.Duration
	MatchFeedCacheTTL  time.Duration
	MarketCacheTTL     time.Duration
	DigestSize         int

	ScraperSourceURL string
	ScraperPages     int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LOTSCOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LotScout API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ses.region", "eu-west-2")
	v.SetDefault("classify.batch_size", 10)
	v.SetDefault("classify.batch_delay", "1s")
	v.SetDefault("matchfeed.cache_ttl", "5m")
	v.SetDefault("market.cache_ttl", "1h")
	v.SetDefault("digest.size", 10)
	v.SetDefault("scraper.pages", 3)

	batchDelay, err := time.ParseDuration(v.GetString("classify.batch_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid classify batch delay: %w", err)
	}

	feedTTL, err := time.ParseDuration(v.GetString("matchfeed.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid match feed cache ttl: %w", err)
	}

	marketTTL, err := time.ParseDuration(v.GetString("market.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid market cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		OpenAIModel:        v.GetString("openai.model"),
		SESRegion:          v.GetString("ses.region"),
		EmailFrom:          v.GetString("email.from"),
		ClassifyBatchSize:  v.GetInt("classify.batch_size"),
		ClassifyBatchDelay: batchDelay,
		MatchFeedCacheTTL:  feedTTL,
		MarketCacheTTL:     marketTTL,
		DigestSize:         v.GetInt("digest.size"),
		ScraperSourceURL:   v.GetString("scraper.source_url"),
		ScraperPages:       v.GetInt("scraper.pages"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ClassifyBatchSize <= 0 {
		cfg.ClassifyBatchSize = 10
	}

	if cfg.DigestSize <= 0 {
		cfg.DigestSize = 10
	}

	return cfg, nil
}
