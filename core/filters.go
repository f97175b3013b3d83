package core

// Filters 是对物品属性的合取条件：所有出现的约束同时满足才算通过。
// nil 指针 / 空切片表示不约束。
type Filters struct {
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinYear     *int     `json:"min_year,omitempty"`
	MaxYear     *int     `json:"max_year,omitempty"`
	MinOdometer *float64 `json:"min_odometer,omitempty"`
	MaxOdometer *float64 `json:"max_odometer,omitempty"`

	// MaxDistanceKm 需要原点（用户位置），由引擎按候选的距离判断，Match 不处理。
	MaxDistanceKm *float64 `json:"max_distance_km,omitempty"`

	Manufacturers []string `json:"manufacturers,omitempty"`
	Types         []string `json:"types,omitempty"`
	FuelTypes     []string `json:"fuel_types,omitempty"`
	Transmissions []string `json:"transmissions,omitempty"`
	States        []string `json:"states,omitempty"`

	// Expression 是可选的 CEL 布尔表达式，例如 `item.fuel == "gas" && item.year >= 2015`
	Expression string `json:"expression,omitempty"`
}

// Empty 表示没有任何约束。
func (f *Filters) Empty() bool {
	if f == nil {
		return true
	}
	return f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinYear == nil && f.MaxYear == nil &&
		f.MinOdometer == nil && f.MaxOdometer == nil &&
		f.MaxDistanceKm == nil &&
		len(f.Manufacturers) == 0 && len(f.Types) == 0 &&
		len(f.FuelTypes) == 0 && len(f.Transmissions) == 0 &&
		len(f.States) == 0 && f.Expression == ""
}

// Match 判断物品是否满足所有属性约束（不含 MaxDistanceKm 与 Expression）。
//
// 里程（odometer）只在物品带有里程时才检查：缺失里程的物品同时通过
// MinOdometer 与 MaxOdometer。类别集合约束遇到缺失属性则不通过。
func (f *Filters) Match(it *Item) bool {
	if it == nil {
		return false
	}
	if f == nil {
		return true
	}

	if f.MinPrice != nil && it.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && it.Price > *f.MaxPrice {
		return false
	}
	if f.MinYear != nil && it.Year < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && it.Year > *f.MaxYear {
		return false
	}
	if it.Odometer != nil {
		if f.MinOdometer != nil && *it.Odometer < *f.MinOdometer {
			return false
		}
		if f.MaxOdometer != nil && *it.Odometer > *f.MaxOdometer {
			return false
		}
	}

	if !inSet(f.Manufacturers, it.Manufacturer) {
		return false
	}
	if !inSet(f.Types, it.Type) {
		return false
	}
	if !inSet(f.FuelTypes, it.Fuel) {
		return false
	}
	if !inSet(f.Transmissions, it.Transmission) {
		return false
	}
	if !inSet(f.States, it.State) {
		return false
	}
	return true
}

// WithinDistance 判断距离约束；距离未知时通过。
func (f *Filters) WithinDistance(distanceKm *float64) bool {
	if f == nil || f.MaxDistanceKm == nil || distanceKm == nil {
		return true
	}
	return *distanceKm <= *f.MaxDistanceKm
}

func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	if v == "" {
		return false
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
