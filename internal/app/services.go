package app

import (
	"fmt"

	"github.com/yungbote/shelfmind-backend/internal/jobs/pipeline/trending_refresh"
	jobrt "github.com/yungbote/shelfmind-backend/internal/jobs/runtime"
	"github.com/yungbote/shelfmind-backend/internal/jobs/worker"
	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
	"github.com/yungbote/shelfmind-backend/internal/report"
	"github.com/yungbote/shelfmind-backend/internal/temporalx/temporalworker"
	"github.com/yungbote/shelfmind-backend/internal/trending"
)

type Services struct {
	Preferences     *personalization.Aggregator
	Narratives      *narrative.Generator
	Synthesizer     *recommend.Synthesizer
	Recommendations *recommend.Controller
	Reports         *report.Generator
	Trending        *trending.Aggregator

	JobRegistry *jobrt.Registry
	JobRunner   *worker.Runner
	// JobWorker drives schedules in-process; nil when Temporal owns scheduling.
	JobWorker      *worker.Worker
	TemporalWorker *temporalworker.Runner
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	prefs := personalization.NewAggregator(log, repos.Preference, repos.ReadingRecord, repos.Wishlist)
	narr := narrative.NewGenerator(log, clients.LLM, cfg.Narrative)
	synth := recommend.NewSynthesizer(log, narr, clients.Catalog, cfg.LookupConcurrency)
	controller := recommend.NewController(
		log,
		prefs,
		synth,
		repos.RecommendationCache,
		repos.Book,
		repos.Trending,
		cfg.RecommendationTTL,
	)
	reports := report.NewGenerator(log, narr, synth, repos.OnboardingReport)
	trendingAgg := trending.NewAggregator(log, repos.ReadingRecord, repos.Trending, repos.RecommendationCache, cfg.Trending)

	registry := jobrt.NewRegistry()
	if err := registry.Register(trending_refresh.New(log, trendingAgg)); err != nil {
		return Services{}, fmt.Errorf("register %s: %w", trending_refresh.JobType, err)
	}
	runner := worker.NewRunner(log, repos.JobRun, registry)

	out := Services{
		Preferences:     prefs,
		Narratives:      narr,
		Synthesizer:     synth,
		Recommendations: controller,
		Reports:         reports,
		Trending:        trendingAgg,
		JobRegistry:     registry,
		JobRunner:       runner,
	}

	if clients.Temporal != nil {
		tw, err := temporalworker.NewRunner(log, cfg.Temporal, clients.Temporal, runner,
			temporalworker.CronJob{JobType: trending_refresh.JobType, Cron: cfg.Temporal.TrendingCron},
		)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
		out.TemporalWorker = tw
	} else {
		out.JobWorker = worker.NewWorker(log, runner, worker.Schedule{
			JobType:    trending_refresh.JobType,
			Interval:   cfg.TrendingInterval,
			RunOnStart: true,
		})
	}
	return out, nil
}
