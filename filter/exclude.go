package filter

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
)

// ExcludeFilter 过滤掉指定的物品：静态列表（如已下架车源）与请求中的 ExcludeIDs。
type ExcludeFilter struct {
	ids map[string]struct{}
}

// NewExcludeFilter 创建排除过滤器，ids 可为空。
func NewExcludeFilter(ids []string) *ExcludeFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &ExcludeFilter{ids: set}
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if _, ok := f.ids[c.ID]; ok {
		return true, nil
	}
	if rctx != nil {
		for _, id := range rctx.ExcludeIDs {
			if c.ID == id {
				return true, nil
			}
		}
	}
	return false, nil
}
