package recommend

import (
	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/scoring"
)

// Request 是一次推荐请求。by-id 使用 ItemID，by-text 使用 Text。
type Request struct {
	ItemID string
	Text   string

	// TopN <= 0 时取默认值，超过上限时截断
	TopN int

	// UserLocation 为 nil 时不做距离打分
	UserLocation *core.Location

	// 为 nil 时取进程默认权重；显式 0 保留
	SimilarityWeight *float64
	DistanceWeight   *float64

	Filters    *core.Filters
	ExcludeIDs []string

	// MaxPerManufacturer > 0 时限制同一厂商的结果数
	MaxPerManufacturer int
}

// QueryInfo 回显本次请求实际生效的参数。
type QueryInfo struct {
	Mode         core.Mode       `json:"mode"`
	ReferenceID  string          `json:"car_id,omitempty"`
	Text         string          `json:"query,omitempty"`
	TopN         int             `json:"top_n"`
	Weights      scoring.Weights `json:"weights"`
	UserLocation *core.Location  `json:"user_location,omitempty"`
	Filters      *core.Filters   `json:"filters,omitempty"`

	MaxPerManufacturer int `json:"max_per_manufacturer,omitempty"`
}

// Response 是推荐结果，Recommendations 按 Rank 升序。
type Response struct {
	Recommendations []core.Recommendation `json:"recommendations"`
	Total           int                   `json:"total"`
	Query           QueryInfo             `json:"query"`
}
