package trending_refresh

import (
	"fmt"

	jobrt "github.com/yungbote/shelfmind-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	if p.agg == nil {
		jc.Fail("validate", fmt.Errorf("trending aggregator not configured"))
		return nil
	}

	jc.Progress("aggregate", 10, "Ranking books by recent activity")
	sum, err := p.agg.Refresh(jc.Ctx, jc.Now)
	if err != nil {
		jc.Fail("aggregate", err)
		return nil
	}

	jc.Succeed("done", sum)
	return nil
}
