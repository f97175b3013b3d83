package core

// ScoringConfig 是打分与推荐相关的配置接口，用于提供进程级默认值。
type ScoringConfig interface {
	// DefaultSimilarityWeight 返回默认的相似度权重
	DefaultSimilarityWeight() float64

	// DefaultDistanceWeight 返回默认的距离权重
	DefaultDistanceWeight() float64

	// MaxDistanceKm 返回距离分数衰减到 0 的距离（公里）
	MaxDistanceKm() float64

	// SimilarityThreshold 返回进入候选窗口的最低归一化相似度（含等于）
	SimilarityThreshold() float64

	// DefaultTopN 返回默认的返回数量
	DefaultTopN() int

	// MaxTopN 返回单次请求的返回数量上限
	MaxTopN() int

	// OversampleFactor 返回候选窗口相对 TopN 的放大倍数
	OversampleFactor() int
}

// DefaultScoringConfig 是默认的打分配置实现。
type DefaultScoringConfig struct{}

func (c *DefaultScoringConfig) DefaultSimilarityWeight() float64 {
	return 0.7
}

func (c *DefaultScoringConfig) DefaultDistanceWeight() float64 {
	return 0.3
}

func (c *DefaultScoringConfig) MaxDistanceKm() float64 {
	return 500
}

func (c *DefaultScoringConfig) SimilarityThreshold() float64 {
	return 0.5
}

func (c *DefaultScoringConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultScoringConfig) MaxTopN() int {
	return 100
}

func (c *DefaultScoringConfig) OversampleFactor() int {
	return 3
}
