package rank

import (
	"context"
	"sort"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/scoring"
)

// HybridNode 计算距离分与综合分，并按综合分降序稳定排序。
//   - DistanceScore：距离未知时为 1.0
//   - FinalScore：clamp01(SimilarityWeight*similarity + DistanceWeight*distanceScore)，权重不归一化
//
// 综合分相同时保持输入（相似度）顺序。
type HybridNode struct {
	Scoring *scoring.Service
}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	w := scoring.Weights{Similarity: rctx.SimilarityWeight, Distance: rctx.DistanceWeight}
	for _, c := range candidates {
		c.DistanceScore = n.Scoring.DistanceScoreOf(c.DistanceKm)
		c.FinalScore = n.Scoring.FinalScore(c.Similarity, c.DistanceScore, w)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
	return candidates, nil
}
