package core

// Mode 标记请求类型。
type Mode string

const (
	ModeByID   Mode = "by_id"
	ModeByText Mode = "by_text"
)

// RecommendContext 承载一次请求的查询向量、位置、过滤与权重，贯穿整个 Pipeline 透传。
// 每次请求新建，Node 只读。
type RecommendContext struct {
	Mode Mode

	// ReferenceID 是 by_id 模式下的参考物品，召回时排除自身
	ReferenceID string
	QueryText   string

	// QueryVector 是查询向量（by_id 来自 EmbeddingStore，by_text 来自 TextEmbedder）
	QueryVector Vector

	// TopN 是本次请求（已截断到上限后）的返回数量
	TopN int

	// UserLocation 为空表示不做距离打分
	UserLocation *Location

	Filters *Filters

	// SimilarityWeight / DistanceWeight 是已按默认值补全后的权重
	SimilarityWeight float64
	DistanceWeight   float64

	// ExcludeIDs 是调用方额外排除的物品
	ExcludeIDs []string

	// MaxPerManufacturer > 0 时，同一厂商最多返回这么多辆
	MaxPerManufacturer int
}
