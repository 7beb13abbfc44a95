package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/ratekit/core"
	"github.com/rushteam/ratekit/pkg/dsl"
)

// Expression 是基于 CEL 表达式的评分过滤器。
// 表达式描述的是"保留条件"：求值为 false 的评分被过滤掉。
//
// 示例：
//   - `value >= 3.0` → 丢弃低分评分
//   - `user_id % 10 != 0` → 按用户抽样
type Expression struct {
	pred *dsl.Predicate
}

// NewExpression 编译保留条件表达式并返回过滤器。
// 空表达式等价于不过滤。
func NewExpression(expr string) (*Expression, error) {
	pred, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return &Expression{pred: pred}, nil
}

func (e *Expression) Name() string {
	return "filter.expression"
}

// ShouldFilter 求值保留条件；求值失败时返回错误，由加载方决定中止还是跳过。
func (e *Expression) ShouldFilter(ctx context.Context, r core.Rating) (bool, error) {
	keep, err := e.pred.Match(r)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

var _ Filter = (*Expression)(nil)
var _ Filter = (*Func)(nil)
