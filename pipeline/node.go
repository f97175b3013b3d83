package pipeline

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：按相似度生成候选窗口
	KindFilter Kind = "filter" // 过滤阶段：补全物品并剔除不符合约束的候选
	KindRank   Kind = "rank"   // 排序阶段：计算综合分并排序
	KindReRank Kind = "rerank" // 重排阶段：截断、定名次
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 candidates -> 输出 candidates”的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		candidates []*core.Candidate,
	) ([]*core.Candidate, error)
}
