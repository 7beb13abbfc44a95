package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/ratekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("rating", cel.DynType),
		cel.Variable("user_id", cel.IntType),
		cel.Variable("item_id", cel.IntType),
		cel.Variable("value", cel.DoubleType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Predicate 是编译好的评分谓词，使用 CEL (Common Expression Language) 实现。
// CEL 是 Google 开发的表达式语言，具有类型安全、高性能、线程安全等特性。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：value >= 4.0 / value < 2.5
//   - ID：user_id != 0 / item_id in [1, 2, 3]
//   - 逻辑：user_id > 100 && value >= 3.0
//   - 嵌套访问：rating.value > 3.0 与顶层 value 等价
//
// 示例：
//   - `value >= 4.0` → 只保留高分评分
//   - `user_id % 10 == 0` → 抽样十分之一的用户
//   - `item_id != 0 || value > 0.0` → 组合条件
//
// 表达式编译一次，之后可以对任意多条评分求值。
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile 编译一个评分谓词表达式。
// 空表达式编译为恒真谓词（不过滤任何评分）。
func Compile(expr string) (*Predicate, error) {
	p := &Predicate{expr: expr}
	if expr == "" {
		return p, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env error: %w", err)
	}

	// 编译表达式
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	// 创建程序
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	p.prg = prg
	return p, nil
}

// Expr 返回原始表达式（用于日志/错误提示）。
func (p *Predicate) Expr() string { return p.expr }

// Match 对一条评分求值，返回谓词结果。
func (p *Predicate) Match(r core.Rating) (bool, error) {
	if p.prg == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(r))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	// 转换为布尔值
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
// 同时提供 rating 结构体访问和顶层字段访问两种写法。
func buildInput(r core.Rating) map[string]interface{} {
	return map[string]interface{}{
		"rating": map[string]interface{}{
			"user_id": r.UserID,
			"item_id": r.ItemID,
			"value":   r.Value,
		},
		"user_id": r.UserID,
		"item_id": r.ItemID,
		"value":   r.Value,
	}
}
