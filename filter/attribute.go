package filter

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
)

// AttributeFilter 按 rctx.Filters 的属性约束与最大距离过滤。
type AttributeFilter struct{}

func (AttributeFilter) Name() string { return "filter.attribute" }

func (AttributeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if rctx == nil || rctx.Filters == nil {
		return false, nil
	}
	if !rctx.Filters.Match(c.Item) {
		return true, nil
	}
	return !rctx.Filters.WithinDistance(c.DistanceKm), nil
}
