package filter

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤，表达式为 false 的候选被移除。
// 表达式在请求开始时编译一次，对窗口内每个候选复用。
type ExprFilter struct {
	Program *dsl.Program
}

// NewExprFilter 编译表达式；表达式无效时返回 INVALID_INPUT。
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: p}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	ok, err := f.Program.Match(c)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
