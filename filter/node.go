package filter

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被过滤掉。
// 过滤器出错时记录日志并保留候选，不中断请求。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Filters) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	log := logging.Ctx(ctx)
	out := make([]*core.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			drop, err := f.ShouldFilter(ctx, rctx, c)
			if err != nil {
				log.Warn().Err(err).Str("filter", f.Name()).Str("car_id", c.ID).Msg("filter error, keeping candidate")
				continue
			}
			if drop {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			log.Debug().Str("car_id", c.ID).Str("filter", reason).Msg("candidate filtered")
			continue
		}
		out = append(out, c)
	}

	return out, nil
}
