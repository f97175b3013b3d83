package core

// Candidate 是推荐链路中的统一承载结构（打分中的候选）。
// 先按 Similarity 排序截取候选窗口，再按 FinalScore 排序定名次。
type Candidate struct {
	ID         string
	Item       *Item
	Similarity float64

	// DistanceKm 仅在用户位置与物品位置都存在时才有值
	DistanceKm    *float64
	DistanceScore float64
	FinalScore    float64
	Rank          int
}

func NewCandidate(id string, similarity float64) *Candidate {
	return &Candidate{
		ID:            id,
		Similarity:    similarity,
		DistanceScore: 1.0,
	}
}

// Recommendation 是对外输出的推荐结果，每次请求新建，不持久化。
type Recommendation struct {
	Item            *Item    `json:"car"`
	SimilarityScore float64  `json:"similarity_score"`
	DistanceScore   float64  `json:"distance_score"`
	FinalScore      float64  `json:"final_score"`
	DistanceKm      *float64 `json:"distance_km"`
	Rank            int      `json:"rank"`
}

// ToRecommendation 把候选转换为输出结构。
func (c *Candidate) ToRecommendation() Recommendation {
	return Recommendation{
		Item:            c.Item,
		SimilarityScore: c.Similarity,
		DistanceScore:   c.DistanceScore,
		FinalScore:      c.FinalScore,
		DistanceKm:      c.DistanceKm,
		Rank:            c.Rank,
	}
}
