package app

import (
	"testing"
	"time"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
	"github.com/yungbote/shelfmind-backend/internal/trending"
)

func TestLoadConfig(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			env: map[string]string{
				"RECOMMENDATION_TTL_HOURS":          "",
				"RECOMMENDATION_LOOKUP_CONCURRENCY": "",
				"TRENDING_INTERVAL_MINUTES":         "",
				"TRENDING_WINDOW_DAYS":              "",
				"TRENDING_TOP_N":                    "",
				"TEMPORAL_ADDRESS":                  "",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.RecommendationTTL != recommend.DefaultTTL {
					t.Fatalf("ttl=%v want %v", cfg.RecommendationTTL, recommend.DefaultTTL)
				}
				if cfg.LookupConcurrency != recommend.DefaultLookupConcurrency {
					t.Fatalf("concurrency=%d", cfg.LookupConcurrency)
				}
				if cfg.TrendingInterval != 24*time.Hour {
					t.Fatalf("interval=%v", cfg.TrendingInterval)
				}
				if cfg.Trending.Window != trending.DefaultWindow || cfg.Trending.TopN != trending.DefaultTopN {
					t.Fatalf("trending=%+v", cfg.Trending)
				}
				if cfg.Temporal.Enabled() {
					t.Fatalf("temporal should be disabled without an address")
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"RECOMMENDATION_TTL_HOURS":          "6",
				"RECOMMENDATION_LOOKUP_CONCURRENCY": "8",
				"TRENDING_INTERVAL_MINUTES":         "30",
				"TRENDING_TOP_N":                    "5",
				"TEMPORAL_ADDRESS":                  "localhost:7233",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.RecommendationTTL != 6*time.Hour {
					t.Fatalf("ttl=%v", cfg.RecommendationTTL)
				}
				if cfg.LookupConcurrency != 8 {
					t.Fatalf("concurrency=%d", cfg.LookupConcurrency)
				}
				if cfg.TrendingInterval != 30*time.Minute {
					t.Fatalf("interval=%v", cfg.TrendingInterval)
				}
				if cfg.Trending.TopN != 5 {
					t.Fatalf("top n=%d", cfg.Trending.TopN)
				}
				if !cfg.Temporal.Enabled() {
					t.Fatalf("temporal should be enabled")
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			tc.check(t, LoadConfig(logger.Nop()))
		})
	}
}
