package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shelfmind-backend/internal/data/db"
	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

const (
	DefaultWindow = 7 * 24 * time.Hour
	DefaultTopN   = 20

	completionWeight = 2
	startWeight      = 1
)

type Config struct {
	Window time.Duration
	TopN   int
}

func ConfigFromEnv() Config {
	return Config{
		Window: envutil.Duration("TRENDING_WINDOW_DAYS", 24*time.Hour, DefaultWindow),
		TopN:   envutil.Int("TRENDING_TOP_N", DefaultTopN),
	}
}

// Summary describes one refresh run.
type Summary struct {
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	BooksActive   int       `json:"books_active"`
	Ranked        int       `json:"ranked"`
	ExpiredPurged int64     `json:"expired_purged"`
}

// Aggregator recomputes the global popularity ranking from reading activity. It holds no
// per-user state and is safe to run from any scheduler.
type Aggregator struct {
	log      *logger.Logger
	records  repos.ReadingRecordRepo
	trending repos.TrendingRepo
	cache    repos.RecommendationCacheRepo
	window   time.Duration
	topN     int
}

func NewAggregator(baseLog *logger.Logger, records repos.ReadingRecordRepo, trending repos.TrendingRepo, cache repos.RecommendationCacheRepo, cfg Config) *Aggregator {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Aggregator{
		log:      baseLog.With("service", "TrendingAggregator"),
		records:  records,
		trending: trending,
		cache:    cache,
		window:   cfg.Window,
		topN:     cfg.TopN,
	}
}

// Refresh ranks books by activity in [now-window, now) and replaces the trending table.
// It also purges expired recommendation cache rows; a purge failure does not fail the run.
func (a *Aggregator) Refresh(ctx context.Context, now time.Time) (sum Summary, err error) {
	ctx, span := observability.StartSpan(ctx, "trending.refresh")
	defer func() {
		span.SetAttributes(attribute.Int("trending.ranked", sum.Ranked))
		observability.EndSpan(span, err)
	}()

	now = now.UTC()
	sum.WindowEnd = now
	sum.WindowStart = now.Add(-a.window)
	dbc := dbctx.New(ctx)

	activity, err := a.records.CountActivitySince(dbc, sum.WindowStart, sum.WindowEnd)
	if err != nil {
		return sum, fmt.Errorf("count reading activity: %w", err)
	}
	sum.BooksActive = len(activity)

	ranked := Rank(activity, a.topN)
	rows := make([]*types.TrendingBook, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, &types.TrendingBook{
			BookID:      r.BookID,
			Rank:        r.Rank,
			Score:       float64(r.Score),
			Completions: r.Completions,
			Starts:      r.Starts,
			WindowStart: sum.WindowStart,
			WindowEnd:   sum.WindowEnd,
			ComputedAt:  now,
		})
	}
	if err := a.trending.ReplaceAll(dbc, rows); err != nil {
		return sum, fmt.Errorf("replace trending: %w", err)
	}
	sum.Ranked = len(rows)
	observability.Current().SetTrendingRows(sum.Ranked)

	if a.cache != nil {
		n, err := a.cache.DeleteExpired(dbc, now)
		if err != nil {
			a.log.Warn("Expired recommendation purge failed", "error", err, "error_kind", db.Kind(err))
		} else {
			sum.ExpiredPurged = n
		}
	}

	a.log.Info("Trending refreshed",
		"window_start", sum.WindowStart,
		"window_end", sum.WindowEnd,
		"books_active", sum.BooksActive,
		"ranked", sum.Ranked,
		"expired_purged", sum.ExpiredPurged,
	)
	return sum, nil
}

// Ranked is one book's position in the ranking.
type Ranked struct {
	repos.BookActivity
	Score int
	Rank  int
}

// Rank scores activity as 2*completions + starts and keeps the topN. Ties break on
// completions, then book id, so the ranking is deterministic. Books with no activity
// are dropped.
func Rank(activity []repos.BookActivity, topN int) []Ranked {
	out := make([]Ranked, 0, len(activity))
	for _, a := range activity {
		score := completionWeight*a.Completions + startWeight*a.Starts
		if score <= 0 {
			continue
		}
		out = append(out, Ranked{BookActivity: a, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Completions != out[j].Completions {
			return out[i].Completions > out[j].Completions
		}
		return out[i].BookID.String() < out[j].BookID.String()
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
