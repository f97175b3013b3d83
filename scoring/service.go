package scoring

import "github.com/mbarek2002/car-plateform/core"

// Weights 是最终分数的两项权重。
// 不要求和为 1：总分是加权和再截断，不做归一化。
type Weights struct {
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
}

// Service 持有静态打分配置。
type Service struct {
	cfg core.ScoringConfig
}

// NewService 创建打分服务；cfg 为 nil 时使用 core.DefaultScoringConfig。
func NewService(cfg core.ScoringConfig) *Service {
	if cfg == nil {
		cfg = &core.DefaultScoringConfig{}
	}
	return &Service{cfg: cfg}
}

func (s *Service) Config() core.ScoringConfig { return s.cfg }

// DistanceScore 把距离线性衰减为 [0,1] 的分数：
// distance <= 0 为 1，distance >= MaxDistanceKm 为 0。
func (s *Service) DistanceScore(distanceKm float64) float64 {
	return DistanceScore(distanceKm, s.cfg.MaxDistanceKm())
}

// DistanceScoreOf 距离未定义（nil）时返回 1.0，即不惩罚。
func (s *Service) DistanceScoreOf(distanceKm *float64) float64 {
	if distanceKm == nil {
		return 1.0
	}
	return s.DistanceScore(*distanceKm)
}

// ResolveWeights 用进程级默认值补全调用方未传的权重。
// 显式传 0 会被保留。
func (s *Service) ResolveWeights(similarity, distance *float64) Weights {
	w := Weights{
		Similarity: s.cfg.DefaultSimilarityWeight(),
		Distance:   s.cfg.DefaultDistanceWeight(),
	}
	if similarity != nil {
		w.Similarity = *similarity
	}
	if distance != nil {
		w.Distance = *distance
	}
	return w
}

// FinalScore = clamp01(w.Similarity*similarity + w.Distance*distanceScore)
func (s *Service) FinalScore(similarity, distanceScore float64, w Weights) float64 {
	return FinalScore(similarity, distanceScore, w)
}

// DistanceScore 是不依赖配置的版本。
func DistanceScore(distanceKm, maxDistanceKm float64) float64 {
	if distanceKm <= 0 {
		return 1.0
	}
	if distanceKm >= maxDistanceKm {
		return 0.0
	}
	return 1.0 - distanceKm/maxDistanceKm
}

// FinalScore 是不依赖配置的版本。
func FinalScore(similarity, distanceScore float64, w Weights) float64 {
	return Clamp01(w.Similarity*similarity + w.Distance*distanceScore)
}
