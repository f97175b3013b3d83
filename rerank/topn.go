package rerank

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，按当前顺序保留前 N 个候选。
// 放在过滤之后、打分之前：窗口按相似度有序，截断等价于“过滤通过的前 N 个”。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.SimilarityNode{...},
//	        &filter.FilterNode{...},
//	        &rerank.TopNNode{},       // N 取 rctx.TopN
//	        &rank.HybridNode{...},
//	        &rerank.DenseRankNode{},
//	    },
//	}
type TopNNode struct {
	// N 要保留的候选数量；N <= 0 时取 rctx.TopN；两者都 <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 || len(candidates) <= limit {
		return candidates, nil
	}
	return candidates[:limit], nil
}
