package rerank

import (
	"context"
	"testing"

	"github.com/mbarek2002/car-plateform/core"
)

func cands(n int) []*core.Candidate {
	out := make([]*core.Candidate, n)
	for i := range out {
		out[i] = core.NewCandidate(string(rune('a'+i)), 1)
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		topN int
		in   int
		want int
	}{
		{"explicit n", 2, 10, 5, 2},
		{"falls back to request top n", 0, 3, 5, 3},
		{"fewer than limit", 10, 0, 4, 4},
		{"no limit", 0, 0, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := cands(tt.in)
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), &core.RecommendContext{TopN: tt.topN}, in)
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.want {
				t.Fatalf("len = %d, want %d", len(out), tt.want)
			}
			for i := range out {
				if out[i] != in[i] {
					t.Errorf("order changed at %d", i)
				}
			}
		})
	}
}

func TestDenseRankNode(t *testing.T) {
	in := cands(4)
	for _, c := range in {
		c.FinalScore = 0.5
	}
	out, err := DenseRankNode{}.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range out {
		if c.Rank != i+1 {
			t.Errorf("rank[%d] = %d, want %d (ties are not shared)", i, c.Rank, i+1)
		}
	}
}

func TestDiversityNode(t *testing.T) {
	mk := func(id, manufacturer string) *core.Candidate {
		c := core.NewCandidate(id, 1)
		c.Item = &core.Item{ID: id, Manufacturer: manufacturer}
		return c
	}
	in := []*core.Candidate{
		mk("a", "toyota"), mk("b", "toyota"), mk("c", "ford"),
		mk("d", "toyota"), mk("e", ""), mk("f", "ford"), mk("g", "honda"),
	}

	tests := []struct {
		name string
		node DiversityNode
		want string
	}{
		{"disabled", DiversityNode{}, "abcdefg"},
		{"one per manufacturer", DiversityNode{MaxPerKey: 1}, "aceg"},
		{"two per manufacturer", DiversityNode{MaxPerKey: 2}, "abcefg"},
		{"by fuel all missing", DiversityNode{Key: "fuel", MaxPerKey: 1}, "abcdefg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.node.Process(context.Background(), nil, in)
			if err != nil {
				t.Fatal(err)
			}
			got := ""
			for _, c := range out {
				got += c.ID
			}
			if got != tt.want {
				t.Errorf("ids = %s, want %s", got, tt.want)
			}
		})
	}
}
