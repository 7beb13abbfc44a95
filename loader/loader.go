package loader

import (
	"context"
	"fmt"

	"github.com/rushteam/ratekit/core"
	"github.com/rushteam/ratekit/filter"
)

// Loader 把一个 RatingSource 灌入一个 RatingSink（通常是 dataset.IndexedStore），
// 加载过程中对每条评分依次应用过滤器。
//
// 数据源可以并发拉取，但灌入 Sink 始终是串行的：数据集是单线程变更模型，
// Loader 保证 Sink 看到的是确定性的顺序事件流。
type Loader struct {
	Source  core.RatingSource
	Filters []filter.Filter
}

// Load 从 Source 读取全部评分，过滤后逐条 Add 进 sink。
// 返回实际灌入的条数。过滤器求值失败会中止加载并返回错误。
func (l *Loader) Load(ctx context.Context, sink core.RatingSink) (int, error) {
	if l.Source == nil {
		return 0, core.NewDomainError(core.ModuleLoader, core.ErrorCodeInvalidInput, "loader: source is required")
	}
	if sink == nil {
		return 0, core.NewDomainError(core.ModuleLoader, core.ErrorCodeInvalidInput, "loader: sink is required")
	}

	var (
		loaded    int
		filterErr error
	)
	err := l.Source.Ratings(ctx, func(r core.Rating) bool {
		for _, f := range l.Filters {
			drop, err := f.ShouldFilter(ctx, r)
			if err != nil {
				filterErr = fmt.Errorf("loader: filter %s: %w", f.Name(), err)
				return false
			}
			if drop {
				return true
			}
		}
		sink.Add(r)
		loaded++
		return true
	})
	if filterErr != nil {
		return loaded, filterErr
	}
	if err != nil {
		return loaded, fmt.Errorf("loader: source %s: %w", l.Source.Name(), err)
	}
	return loaded, nil
}
