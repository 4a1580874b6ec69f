package trending_refresh

import (
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/trending"
)

const JobType = "trending_refresh"

type Pipeline struct {
	log *logger.Logger
	agg *trending.Aggregator
}

func New(baseLog *logger.Logger, agg *trending.Aggregator) *Pipeline {
	return &Pipeline{
		log: baseLog.With("job", JobType),
		agg: agg,
	}
}

func (p *Pipeline) Type() string { return JobType }
