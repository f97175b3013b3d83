package rank

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/scoring"
)

func f64(v float64) *float64 { return &v }

func cand(id string, sim float64, distanceKm *float64) *core.Candidate {
	c := core.NewCandidate(id, sim)
	c.DistanceKm = distanceKm
	return c
}

func TestHybridNode(t *testing.T) {
	n := &HybridNode{Scoring: scoring.NewService(nil)}
	rctx := &core.RecommendContext{SimilarityWeight: 0.7, DistanceWeight: 0.3}
	in := []*core.Candidate{
		cand("far", 1.0, f64(600)),
		cand("unknown", 0.9, nil),
		cand("near", 0.9, f64(0)),
		cand("mid", 0.8, f64(250)),
	}

	out, err := n.Process(context.Background(), rctx, in)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]struct{ dist, final float64 }{
		"far":     {0, 0.7},
		"unknown": {1, 0.93},
		"near":    {1, 0.93},
		"mid":     {0.5, 0.71},
	}
	for _, c := range out {
		w := want[c.ID]
		if math.Abs(c.DistanceScore-w.dist) > 1e-9 || math.Abs(c.FinalScore-w.final) > 1e-9 {
			t.Errorf("%s: distance=%v final=%v, want %v/%v", c.ID, c.DistanceScore, c.FinalScore, w.dist, w.final)
		}
	}

	// unknown 与 near 同分，保持输入顺序
	var got []string
	for _, c := range out {
		got = append(got, c.ID)
	}
	if !reflect.DeepEqual(got, []string{"unknown", "near", "mid", "far"}) {
		t.Errorf("order = %v", got)
	}
}

// 权重之和超过 1 时不归一化，总分截断到 1。
func TestHybridNode_UnnormalizedWeights(t *testing.T) {
	n := &HybridNode{Scoring: scoring.NewService(nil)}
	rctx := &core.RecommendContext{SimilarityWeight: 1, DistanceWeight: 1}
	out, err := n.Process(context.Background(), rctx, []*core.Candidate{cand("a", 0.8, nil)})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].FinalScore != 1 {
		t.Errorf("final = %v, want 1 (clamped)", out[0].FinalScore)
	}
}
