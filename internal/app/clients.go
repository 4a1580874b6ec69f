package app

import (
	"context"
	"fmt"
	"strings"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/shelfmind-backend/internal/clients/redis"
	"github.com/yungbote/shelfmind-backend/internal/platform/googlebooks"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/platform/openai"
	"github.com/yungbote/shelfmind-backend/internal/temporalx"
)

type Clients struct {
	// LLM is nil when no API key is configured; narratives then use static text.
	LLM      openai.Client
	Cache    redis.JSONCache
	Catalog  *googlebooks.Client
	Temporal temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis is optional: catalog lookups go uncached without it.
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		cache, err := redis.NewJSONCache(log, cfg.RedisAddr, cfg.RedisScope)
		if err != nil {
			log.Warn("Redis unavailable; catalog cache disabled", "error", err)
		} else {
			out.Cache = cache
		}
	}

	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		llm, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.LLM = llm
	} else {
		log.Warn("OPENAI_API_KEY not set; narratives will use static text")
	}

	catalog, err := googlebooks.NewClient(ctx, log, cfg.Catalog, out.Cache)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init google books client: %w", err)
	}
	out.Catalog = catalog

	tc, err := temporalx.NewClient(ctx, log, cfg.Temporal)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}
	out.Temporal = tc

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
