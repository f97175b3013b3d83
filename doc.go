// Package carreco 是二手车混合推荐引擎。
//
// 设计要点：
//   - Pipeline-first: 推荐逻辑由 Node 串联（Recall → Filter → Rank → ReRank）
//   - 快照只读: 目录与向量首次访问时加载一次，之后无锁读取，可原子刷新
//   - 混合打分: 归一化余弦相似度 + 距离线性衰减，权重不归一化
package carreco

import (
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/recommend"
)

// 轻量 facade：便于直接 import 根包使用核心抽象。
type (
	Engine   = recommend.Engine
	Request  = recommend.Request
	Response = recommend.Response
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

var NewEngine = recommend.NewEngine

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
