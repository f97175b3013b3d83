package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/recommend"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// recommendOptions 是两种推荐请求共有的字段
type recommendOptions struct {
	TopN *int `json:"top_n" validate:"omitempty,gte=1,lte=100"`

	UserLatitude  *float64 `json:"user_latitude" validate:"omitempty,gte=-90,lte=90"`
	UserLongitude *float64 `json:"user_longitude" validate:"omitempty,gte=-180,lte=180"`

	SimilarityWeight *float64 `json:"similarity_weight" validate:"omitempty,gte=0,lte=1"`
	DistanceWeight   *float64 `json:"distance_weight" validate:"omitempty,gte=0,lte=1"`

	MinPrice      *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice      *float64 `json:"max_price" validate:"omitempty,gte=0"`
	MinYear       *int     `json:"min_year"`
	MaxYear       *int     `json:"max_year"`
	MinOdometer   *float64 `json:"min_odometer" validate:"omitempty,gte=0"`
	MaxOdometer   *float64 `json:"max_odometer" validate:"omitempty,gte=0"`
	MaxDistanceKm *float64 `json:"max_distance_km" validate:"omitempty,gt=0"`

	Manufacturers []string `json:"manufacturers"`
	Types         []string `json:"types"`
	FuelTypes     []string `json:"fuel_types"`
	Transmissions []string `json:"transmissions"`
	States        []string `json:"states"`
	Expression    string   `json:"expression" validate:"max=1024"`

	ExcludeIDs []string `json:"exclude_ids" validate:"max=1000"`

	MaxPerManufacturer *int `json:"max_per_manufacturer" validate:"omitempty,gte=1,lte=100"`
}

// RecommendByIDRequest 是 POST /v1/recommendations/by-id 的请求体
type RecommendByIDRequest struct {
	CarID string `json:"car_id" validate:"required"`
	recommendOptions
}

// RecommendByTextRequest 是 POST /v1/recommendations/by-text 的请求体
type RecommendByTextRequest struct {
	Query string `json:"query" validate:"required,min=1,max=2048"`
	recommendOptions
}

// toRequest 转换为引擎请求。只有经纬度同时给出时才使用用户位置。
func (o *recommendOptions) toRequest() recommend.Request {
	req := recommend.Request{
		SimilarityWeight: o.SimilarityWeight,
		DistanceWeight:   o.DistanceWeight,
		ExcludeIDs:       o.ExcludeIDs,
	}
	if o.TopN != nil {
		req.TopN = *o.TopN
	}
	if o.MaxPerManufacturer != nil {
		req.MaxPerManufacturer = *o.MaxPerManufacturer
	}
	if o.UserLatitude != nil && o.UserLongitude != nil {
		req.UserLocation = &core.Location{Latitude: *o.UserLatitude, Longitude: *o.UserLongitude}
	}

	f := &core.Filters{
		MinPrice:      o.MinPrice,
		MaxPrice:      o.MaxPrice,
		MinYear:       o.MinYear,
		MaxYear:       o.MaxYear,
		MinOdometer:   o.MinOdometer,
		MaxOdometer:   o.MaxOdometer,
		MaxDistanceKm: o.MaxDistanceKm,
		Manufacturers: o.Manufacturers,
		Types:         o.Types,
		FuelTypes:     o.FuelTypes,
		Transmissions: o.Transmissions,
		States:        o.States,
		Expression:    o.Expression,
	}
	if !f.Empty() {
		req.Filters = f
	}
	return req
}

// HealthResponse 是健康检查响应
type HealthResponse struct {
	Status  string          `json:"status"`
	Service string          `json:"service,omitempty"`
	Checks  map[string]bool `json:"checks,omitempty"`
}
