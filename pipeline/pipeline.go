package pipeline

import (
	"context"
	"time"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Nodes []Node

	// Observe 在每个 Node 执行后回调（可选），用于打点
	Observe func(node Node, in, out int, took time.Duration)
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	log := logging.Ctx(ctx)
	cur := candidates
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		took := time.Since(start)
		log.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", took).
			Msg("pipeline node done")
		if p.Observe != nil {
			p.Observe(node, len(cur), len(next), took)
		}
		cur = next
	}
	return cur, nil
}
