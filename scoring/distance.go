package scoring

import (
	"github.com/tidwall/geodesic"

	"github.com/mbarek2002/car-plateform/core"
)

// DistanceKm 返回两点在 WGS84 椭球上的测地线距离（公里）。
func DistanceKm(a, b core.Location) float64 {
	var meters float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &meters, nil, nil)
	return meters / 1000
}

// DistanceBetween 在两侧都有位置时返回距离，否则返回 nil（距离未定义）。
func DistanceBetween(user *core.Location, it *core.Item) *float64 {
	if user == nil || !it.HasLocation() {
		return nil
	}
	km := DistanceKm(*user, *it.Location)
	return &km
}
