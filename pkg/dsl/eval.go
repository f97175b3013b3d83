package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/mbarek2002/car-plateform/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("candidate", cel.MapType(cel.StringType, cel.DynType)),
		// 允许 item.price > 10000 这类 double 与 int 的比较
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的过滤表达式，可并发复用。
//
// 表达式语法（CEL 标准语法）：
//   - 属性：item.price / item.year / item.fuel / item.odometer（缺失为 null）
//   - 候选：candidate.similarity / candidate.distance_km（未知为 null）
//   - 逻辑：item.fuel == "gas" && item.year >= 2015
//   - 字符串：item.model.startsWith("civic")
//   - 集合：item.manufacturer in ["toyota", "honda"]
//
// 示例：
//   - `item.odometer != null && item.odometer < 100000.0`
//   - `candidate.distance_km == null || candidate.distance_km < 50.0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；语法或类型错误返回 INVALID_INPUT。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "dsl: init env", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid filter expression %q", expr), issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("filter expression %q must return bool, got %s", expr, ast.OutputType()))
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid filter expression %q", expr), err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string { return p.expr }

// Match 对一个候选求值。求值错误（如访问 null 字段）原样返回，由调用方决定是否保留候选。
func (p *Program) Match(c *core.Candidate) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(c))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(c *core.Candidate) map[string]any {
	var item map[string]any
	if c.Item != nil {
		item = c.Item.Attributes()
	} else {
		item = map[string]any{"id": c.ID}
	}

	var distance any
	if c.DistanceKm != nil {
		distance = *c.DistanceKm
	}

	return map[string]any{
		"item": item,
		"candidate": map[string]any{
			"id":          c.ID,
			"similarity":  c.Similarity,
			"distance_km": distance,
		},
	}
}
