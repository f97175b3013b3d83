package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbarek2002/car-plateform/core"
)

type countingEmbedder struct {
	calls atomic.Int32
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (core.Vector, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return core.Vector{float32(len(text)), 1}, nil
}

func TestCachedEmbedder_Hit(t *testing.T) {
	next := &countingEmbedder{}
	c := NewCachedEmbedder(next, 10, time.Minute).(*CachedEmbedder)
	defer c.Close()

	ctx := context.Background()
	for _, q := range []string{"suv", " suv ", "suv"} {
		if _, err := c.Embed(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("downstream calls = %d, want 1", got)
	}
	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("stats = %d/%d/%d", hits, misses, size)
	}
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	next := &countingEmbedder{err: errors.New("down")}
	c := NewCachedEmbedder(next, 10, time.Minute).(*CachedEmbedder)
	defer c.Close()

	for i := 0; i < 2; i++ {
		if _, err := c.Embed(context.Background(), "truck"); err == nil {
			t.Fatal("expected error")
		}
	}
	if got := next.calls.Load(); got != 2 {
		t.Errorf("downstream calls = %d, want 2", got)
	}
}

func TestCachedEmbedder_Expiry(t *testing.T) {
	next := &countingEmbedder{}
	c := NewCachedEmbedder(next, 10, 20*time.Millisecond).(*CachedEmbedder)
	defer c.Close()

	_, _ = c.Embed(context.Background(), "van")
	time.Sleep(40 * time.Millisecond)
	_, _ = c.Embed(context.Background(), "van")
	if got := next.calls.Load(); got != 2 {
		t.Errorf("downstream calls = %d, want 2 after expiry", got)
	}
}

func TestCachedEmbedder_EvictsLRU(t *testing.T) {
	next := &countingEmbedder{}
	c := NewCachedEmbedder(next, 2, time.Minute).(*CachedEmbedder)
	defer c.Close()

	ctx := context.Background()
	_, _ = c.Embed(ctx, "a")
	time.Sleep(time.Millisecond)
	_, _ = c.Embed(ctx, "bb")
	time.Sleep(time.Millisecond)
	_, _ = c.Embed(ctx, "a") // a 比 bb 更近被访问
	time.Sleep(time.Millisecond)
	_, _ = c.Embed(ctx, "ccc") // 淘汰 bb

	if _, _, size := c.Stats(); size != 2 {
		t.Errorf("size = %d, want 2", size)
	}
	before := next.calls.Load()
	_, _ = c.Embed(ctx, "a")
	if next.calls.Load() != before {
		t.Error("a should still be cached")
	}
	_, _ = c.Embed(ctx, "bb")
	if next.calls.Load() != before+1 {
		t.Error("bb should have been evicted")
	}
}

func TestNewCachedEmbedder_Disabled(t *testing.T) {
	next := &countingEmbedder{}
	if got := NewCachedEmbedder(next, 0, time.Minute); got != core.TextEmbedder(next) {
		t.Error("zero size should return next unchanged")
	}
	if got := NewCachedEmbedder(nil, 10, time.Minute); got != nil {
		t.Error("nil next should stay nil")
	}
}
