package recall

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/scoring"
)

// parallelMin 是启用分片并发计算的最小向量数
const parallelMin = 4096

// SimilarityNode 是向量召回 Node：对全部物品向量暴力计算归一化余弦相似度，
// 生成按相似度降序的候选窗口。
//
// 规则：
//   - 相似度 >= Threshold 才进入窗口（包含边界）
//   - rctx.ReferenceID 对应的物品不会出现在窗口中
//   - 窗口大小为 rctx.TopN * Oversample
//   - 相似度相同按 ID 升序，保证结果确定
type SimilarityNode struct {
	Store      core.EmbeddingStore
	Threshold  float64
	Oversample int

	// Workers > 1 且向量数足够多时分片并发计算
	Workers int
}

func (n *SimilarityNode) Name() string        { return "recall.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *SimilarityNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if rctx == nil || len(rctx.QueryVector) == 0 {
		return nil, nil
	}

	entries, err := n.Store.Entries(ctx)
	if err != nil {
		return nil, err
	}

	var out []*core.Candidate
	if n.Workers > 1 && len(entries) >= parallelMin {
		out, err = n.scoreParallel(ctx, rctx, entries)
	} else {
		out, err = n.score(rctx, entries)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError,
			"similarity scoring failed", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})

	if window := rctx.TopN * n.oversample(); window > 0 && len(out) > window {
		out = out[:window]
	}
	return out, nil
}

func (n *SimilarityNode) oversample() int {
	if n.Oversample <= 0 {
		return 1
	}
	return n.Oversample
}

func (n *SimilarityNode) score(rctx *core.RecommendContext, entries []core.Embedding) ([]*core.Candidate, error) {
	out := make([]*core.Candidate, 0, 64)
	for _, e := range entries {
		if e.ID == rctx.ReferenceID {
			continue
		}
		sim, err := scoring.Similarity(rctx.QueryVector, e.Vector)
		if err != nil {
			return nil, err
		}
		if sim >= n.Threshold {
			out = append(out, core.NewCandidate(e.ID, sim))
		}
	}
	return out, nil
}

// scoreParallel 按分片并发计算，合并顺序与分片无关（随后统一排序）。
func (n *SimilarityNode) scoreParallel(ctx context.Context, rctx *core.RecommendContext, entries []core.Embedding) ([]*core.Candidate, error) {
	shards := n.Workers
	size := (len(entries) + shards - 1) / shards
	parts := make([][]*core.Candidate, shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		if lo >= len(entries) {
			break
		}
		hi := min(lo+size, len(entries))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := n.score(rctx, entries[lo:hi])
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*core.Candidate
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
