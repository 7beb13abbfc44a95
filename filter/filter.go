package filter

import (
	"context"

	"github.com/rushteam/ratekit/core"
)

// Filter 是评分过滤器的抽象接口，用于判断一条评分事件是否应该被过滤掉。
// 返回 true 表示应该过滤（丢弃），false 表示保留。
// 过滤发生在加载阶段：被过滤的评分不会进入数据集。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 rating 是否应该被过滤
	ShouldFilter(ctx context.Context, r core.Rating) (bool, error)
}

// Func 把一个函数适配成 Filter，便于内联定义简单规则。
type Func struct {
	FilterName string
	Fn         func(r core.Rating) bool
}

func (f *Func) Name() string {
	if f.FilterName == "" {
		return "filter.func"
	}
	return f.FilterName
}

func (f *Func) ShouldFilter(ctx context.Context, r core.Rating) (bool, error) {
	if f.Fn == nil {
		return false, nil
	}
	return f.Fn(r), nil
}
