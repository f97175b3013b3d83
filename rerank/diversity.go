package rerank

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/pkg/conv"
)

// DiversityNode 是多样性重排：按当前顺序，同一类别最多保留 MaxPerKey 个候选。
// 放在 TopN 截断之前，被挤掉的位置由窗口中后续的候选补上。
//
// 类别取自 Item.Attributes()[Key]，默认 "manufacturer"；类别缺失的候选不受限制。
type DiversityNode struct {
	Key       string
	MaxPerKey int
}

func (n *DiversityNode) Name() string {
	return "rerank.diversity"
}

func (n *DiversityNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *DiversityNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.MaxPerKey <= 0 || len(candidates) == 0 {
		return candidates, nil
	}

	key := n.Key
	if key == "" {
		key = "manufacturer"
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		cate := ""
		if c.Item != nil {
			cate, _ = conv.ToString(c.Item.Attributes()[key])
		}
		if cate == "" {
			out = append(out, c)
			continue
		}
		if seen[cate] >= n.MaxPerKey {
			continue
		}
		seen[cate]++
		out = append(out, c)
	}
	return out, nil
}
