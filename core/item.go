package core

// Location 是经纬度坐标（WGS84）。
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Valid 检查坐标是否在合法范围内：纬度 [-90,90]，经度 [-180,180]。
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Item 是目录中的一辆车。
// 加载进快照后不可变；ID 即身份。
type Item struct {
	ID           string    `json:"car_id" yaml:"car_id"`
	Price        float64   `json:"price" yaml:"price"`
	Year         int       `json:"year" yaml:"year"`
	Manufacturer string    `json:"manufacturer" yaml:"manufacturer"`
	Model        string    `json:"model" yaml:"model"`
	Odometer     *float64  `json:"odometer,omitempty" yaml:"odometer,omitempty"`
	Location     *Location `json:"location,omitempty" yaml:"location,omitempty"`

	// 可选的类别属性，空字符串表示缺失
	Condition    string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Cylinders    string `json:"cylinders,omitempty" yaml:"cylinders,omitempty"`
	Fuel         string `json:"fuel,omitempty" yaml:"fuel,omitempty"`
	TitleStatus  string `json:"title_status,omitempty" yaml:"title_status,omitempty"`
	Transmission string `json:"transmission,omitempty" yaml:"transmission,omitempty"`
	Drive        string `json:"drive,omitempty" yaml:"drive,omitempty"`
	Size         string `json:"size,omitempty" yaml:"size,omitempty"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	PaintColor   string `json:"paint_color,omitempty" yaml:"paint_color,omitempty"`
	State        string `json:"state,omitempty" yaml:"state,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	VIN          string `json:"vin,omitempty" yaml:"vin,omitempty"`

	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasLocation 表示物品是否带有坐标。
func (it *Item) HasLocation() bool {
	return it != nil && it.Location != nil
}

// Attributes 把物品展开为 map，供 DSL 表达式使用。
// 缺失的可选数值以 nil 表示。
func (it *Item) Attributes() map[string]any {
	var odometer any
	if it.Odometer != nil {
		odometer = *it.Odometer
	}
	return map[string]any{
		"id":           it.ID,
		"price":        it.Price,
		"year":         int64(it.Year),
		"odometer":     odometer,
		"manufacturer": it.Manufacturer,
		"model":        it.Model,
		"condition":    it.Condition,
		"fuel":         it.Fuel,
		"transmission": it.Transmission,
		"type":         it.Type,
		"paint_color":  it.PaintColor,
		"state":        it.State,
		"region":       it.Region,
		"has_location": it.Location != nil,
	}
}
