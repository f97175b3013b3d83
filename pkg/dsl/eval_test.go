package dsl

import (
	"testing"

	"github.com/mbarek2002/car-plateform/core"
)

func TestProgram_Match(t *testing.T) {
	odo := 120000.0
	km := 42.0
	c := &core.Candidate{
		ID:         "7",
		Similarity: 0.8,
		DistanceKm: &km,
		Item: &core.Item{
			ID:           "7",
			Price:        18000,
			Year:         2017,
			Manufacturer: "honda",
			Model:        "civic ex",
			Fuel:         "gas",
			Odometer:     &odo,
		},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`item.fuel == "gas"`, true},
		{`item.year >= 2015 && item.price < 20000`, true},
		{`item.price > 20000.0`, false},
		{`item.manufacturer in ["toyota", "honda"]`, true},
		{`item.model.startsWith("civic")`, true},
		{`item.odometer != null && item.odometer < 100000.0`, false},
		{`candidate.similarity > 0.75`, true},
		{`candidate.distance_km == null || candidate.distance_km < 50.0`, true},
		{`item.has_location`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := p.Match(c)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	for _, expr := range []string{
		`item.price >`,
		`unknown_var == 1`,
		`1 + 2`,
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr)
			if !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestProgram_EvalErrorOnNull(t *testing.T) {
	p, err := Compile(`item.odometer < 100000.0`)
	if err != nil {
		t.Fatal(err)
	}
	c := &core.Candidate{ID: "x", Item: &core.Item{ID: "x"}}
	if _, err := p.Match(c); err == nil {
		t.Error("comparing null odometer should fail evaluation")
	}
}
