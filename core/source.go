package core

import "context"

// RatingSource 是评分数据的来源抽象：一批或一条条产出 (user, item, value) 三元组。
// 实现方负责数据的获取方式（Store 分片、Feast 在线特征、内存切片等），
// 消费方（loader.Loader）只关心顺序产出的事件流。
type RatingSource interface {
	// Name 返回数据源名称（用于日志/错误提示）
	Name() string

	// Ratings 顺序产出全部评分事件。
	// yield 返回 false 时提前终止（例如下游出错或达到上限）。
	Ratings(ctx context.Context, yield func(Rating) bool) error
}

// RatingSink 是评分数据的去向抽象，由 dataset.IndexedStore 等消费端实现。
// 批量灌入就是对着 Sink 反复 Add。
type RatingSink interface {
	Add(r Rating)
}

// SliceSource 是最简单的 RatingSource：直接回放一个内存切片。
// 用于测试和小数据集。
type SliceSource []Rating

func (s SliceSource) Name() string { return "slice" }

func (s SliceSource) Ratings(ctx context.Context, yield func(Rating) bool) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !yield(r) {
			return nil
		}
	}
	return nil
}
