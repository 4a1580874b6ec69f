package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	books "google.golang.org/api/books/v1"
	"google.golang.org/api/option"

	"github.com/yungbote/shelfmind-backend/internal/clients/redis"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// Record is a resolved catalog entry.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"cover_url,omitempty"`
	ISBN13      string `json:"isbn13,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Lookup resolves a free-text title to the best catalog match. (nil, nil) means no match.
type Lookup interface {
	SearchByTitle(ctx context.Context, title string) (*Record, error)
}

type Config struct {
	APIKey string
	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint        string
	RPS             float64
	Burst           int
	Timeout         time.Duration
	CacheTTL        time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:          envutil.String("GOOGLE_BOOKS_API_KEY", ""),
		Endpoint:        envutil.String("GOOGLE_BOOKS_ENDPOINT", ""),
		RPS:             envutil.Float("GOOGLE_BOOKS_RPS", 5),
		Burst:           envutil.Int("GOOGLE_BOOKS_BURST", 5),
		Timeout:         envutil.Duration("GOOGLE_BOOKS_TIMEOUT_SECONDS", time.Second, 5*time.Second),
		CacheTTL:        envutil.Duration("CATALOG_CACHE_TTL_HOURS", time.Hour, 7*24*time.Hour),
		BreakerFailures: uint32(envutil.Int("GOOGLE_BOOKS_BREAKER_FAILURES", 5)),
		BreakerCooldown: envutil.Duration("GOOGLE_BOOKS_BREAKER_COOLDOWN_SECONDS", time.Second, 30*time.Second),
	}
}

type Client struct {
	log      *logger.Logger
	svc      *books.Service
	cache    redis.JSONCache
	cacheTTL time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*Record]
}

// NewClient builds a Google Books lookup. cache may be nil.
func NewClient(ctx context.Context, baseLog *logger.Logger, cfg Config, cache redis.JSONCache) (*Client, error) {
	if baseLog == nil {
		return nil, fmt.Errorf("logger required")
	}
	var opts []option.ClientOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("books service: %w", err)
	}

	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	log := baseLog.With("service", "GoogleBooksClient")
	c := &Client{
		log:      log,
		svc:      svc,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Record](gobreaker.Settings{
		Name:        "google-books",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Catalog circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

func (c *Client) SearchByTitle(ctx context.Context, title string) (rec *Record, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	ctx, span := observability.StartSpan(ctx, "catalog.search_by_title", attribute.String("catalog.title", title))
	start := time.Now()
	outcome := "error"
	defer func() {
		observability.Current().ObserveCatalogLookup(outcome, time.Since(start))
		span.SetAttributes(attribute.String("catalog.outcome", outcome))
		observability.EndSpan(span, err)
	}()

	key := "catalog:title:" + normalizeTitle(title)
	if c.cache != nil {
		var cached Record
		ok, cerr := c.cache.Get(ctx, key, &cached)
		if cerr != nil {
			c.log.Warn("Catalog cache read failed", "error", cerr)
		} else if ok {
			outcome = "cache_hit"
			return &cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	rec, err = c.breaker.Execute(func() (*Record, error) {
		return c.search(ctx, title)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		return nil, err
	}
	if rec == nil {
		outcome = "not_found"
		return nil, nil
	}
	outcome = "found"

	if c.cache != nil && c.cacheTTL > 0 {
		if cerr := c.cache.Set(ctx, key, rec, c.cacheTTL); cerr != nil {
			c.log.Warn("Catalog cache write failed", "error", cerr)
		}
	}
	return rec, nil
}

func (c *Client) search(ctx context.Context, title string) (*Record, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Volumes.List("intitle:" + title).
		PrintType("books").
		MaxResults(5).
		Context(cctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("books volumes.list: %w", err)
	}
	for _, v := range resp.Items {
		if rec := toRecord(v); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

func toRecord(v *books.Volume) *Record {
	if v == nil || v.VolumeInfo == nil || strings.TrimSpace(v.VolumeInfo.Title) == "" {
		return nil
	}
	info := v.VolumeInfo
	rec := &Record{
		ID:          v.Id,
		Title:       strings.TrimSpace(info.Title),
		Author:      strings.Join(info.Authors, ", "),
		Description: strings.TrimSpace(info.Description),
	}
	if len(info.Categories) > 0 {
		rec.Category = info.Categories[0]
	}
	if info.ImageLinks != nil {
		cover := info.ImageLinks.Thumbnail
		if cover == "" {
			cover = info.ImageLinks.SmallThumbnail
		}
		rec.CoverURL = strings.Replace(cover, "http://", "https://", 1)
	}
	for _, id := range info.IndustryIdentifiers {
		if id != nil && id.Type == "ISBN_13" {
			rec.ISBN13 = id.Identifier
			break
		}
	}
	return rec
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
