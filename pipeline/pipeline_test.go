package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mbarek2002/car-plateform/core"
)

type funcNode struct {
	name string
	fn   func([]*core.Candidate) ([]*core.Candidate, error)
}

func (n funcNode) Name() string { return n.name }
func (n funcNode) Kind() Kind   { return KindFilter }
func (n funcNode) Process(_ context.Context, _ *core.RecommendContext, in []*core.Candidate) ([]*core.Candidate, error) {
	return n.fn(in)
}

func TestPipeline_Run(t *testing.T) {
	seed := funcNode{"seed", func([]*core.Candidate) ([]*core.Candidate, error) {
		return []*core.Candidate{core.NewCandidate("a", 1), core.NewCandidate("b", 0.9), core.NewCandidate("c", 0.8)}, nil
	}}
	dropFirst := funcNode{"drop", func(in []*core.Candidate) ([]*core.Candidate, error) { return in[1:], nil }}

	var observed []string
	p := &Pipeline{
		Nodes: []Node{seed, dropFirst},
		Observe: func(node Node, in, out int, _ time.Duration) {
			observed = append(observed, node.Name())
			if node.Name() == "drop" && (in != 3 || out != 2) {
				t.Errorf("drop observed in=%d out=%d", in, out)
			}
		},
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "b" {
		t.Errorf("out = %v", out)
	}
	if len(observed) != 2 {
		t.Errorf("observed = %v", observed)
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := &Pipeline{Nodes: []Node{
		funcNode{"fail", func([]*core.Candidate) ([]*core.Candidate, error) { return nil, boom }},
		funcNode{"after", func(in []*core.Candidate) ([]*core.Candidate, error) { called = true; return in, nil }},
	}}
	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if called {
		t.Error("node after failure was executed")
	}
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{funcNode{"n", func(in []*core.Candidate) ([]*core.Candidate, error) { return in, nil }}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
