package app

import (
	"time"

	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/googlebooks"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/platform/openai"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
	"github.com/yungbote/shelfmind-backend/internal/temporalx"
	"github.com/yungbote/shelfmind-backend/internal/trending"
)

type Config struct {
	LogMode string

	OpenAI     openai.Config
	Narrative  narrative.Config
	Catalog    googlebooks.Config
	RedisAddr  string
	RedisScope string

	RecommendationTTL time.Duration
	LookupConcurrency int

	Trending         trending.Config
	TrendingInterval time.Duration
	Temporal         temporalx.Config

	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode: envutil.String("LOG_MODE", "development"),

		OpenAI:     openai.ConfigFromEnv(),
		Narrative:  narrative.ConfigFromEnv(),
		Catalog:    googlebooks.ConfigFromEnv(),
		RedisAddr:  envutil.String("REDIS_ADDR", ""),
		RedisScope: envutil.String("REDIS_KEY_PREFIX", "shelfmind"),

		RecommendationTTL: envutil.Duration("RECOMMENDATION_TTL_HOURS", time.Hour, recommend.DefaultTTL),
		LookupConcurrency: envutil.Int("RECOMMENDATION_LOOKUP_CONCURRENCY", recommend.DefaultLookupConcurrency),

		Trending:         trending.ConfigFromEnv(),
		TrendingInterval: envutil.Duration("TRENDING_INTERVAL_MINUTES", time.Minute, 24*time.Hour),
		Temporal:         temporalx.LoadConfig(),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
	if log != nil {
		log.Info("Config loaded",
			"openai_configured", cfg.OpenAI.APIKey != "",
			"openai_model", cfg.OpenAI.Model,
			"redis_configured", cfg.RedisAddr != "",
			"temporal_configured", cfg.Temporal.Enabled(),
			"recommendation_ttl", cfg.RecommendationTTL,
			"trending_top_n", cfg.Trending.TopN,
		)
	}
	return cfg
}
