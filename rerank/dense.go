package rerank

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pipeline"
)

// DenseRankNode 按当前顺序赋名次 1..k，分数相同也不并列。
type DenseRankNode struct{}

func (DenseRankNode) Name() string        { return "rerank.dense_rank" }
func (DenseRankNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (DenseRankNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	for i, c := range candidates {
		c.Rank = i + 1
	}
	return candidates, nil
}
