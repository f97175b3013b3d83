package scoring

import (
	"fmt"
	"math"

	"github.com/mbarek2002/car-plateform/core"
)

// ErrDimensionMismatch 表示两个向量长度不同（通常是向量数据损坏或模型不一致）。
var ErrDimensionMismatch = core.NewDomainError(core.ModuleScoring, core.ErrorCodeInternalError, "vector dimension mismatch")

// CosineSimilarity 计算余弦相似度，结果在 [-1,1]。
// 任一向量范数为 0 时定义为 0；长度不同返回 ErrDimensionMismatch。
func CosineSimilarity(a, b core.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, core.WrapDomainError(core.ModuleScoring, core.ErrorCodeInternalError,
			"vector dimension mismatch", fmt.Errorf("%d != %d", len(a), len(b)))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Similarity 返回归一化后的相似度分数 clamp01((cos+1)/2)。
// 零向量直接返回 0，而不是 cos=0 对应的 0.5。
func Similarity(a, b core.Vector) (float64, error) {
	if len(a) != len(b) {
		return CosineSimilarity(a, b)
	}
	if isZero(a) || isZero(b) {
		return 0, nil
	}
	cos, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return Clamp01((cos + 1) / 2), nil
}

// Clamp01 把 v 截断到 [0,1]，NaN 视为 0。
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isZero(v core.Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
