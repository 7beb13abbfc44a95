// Package ratekit 是一个评分数据集工具包（Rating Dataset Kit）。
//
// 设计要点：
// - 单一权威序列: 评分事件只存一份（插入序），按用户/物品的分组视图是派生索引
// - 惰性索引: byUser/byItem 首次读取时构建，建成后随每次变更同步维护
// - 加载管线可扩展: RatingSource（Store 分片 / Feast / 内嵌）+ CEL 过滤器即插即用
package ratekit

import (
	"github.com/rushteam/ratekit/core"
	"github.com/rushteam/ratekit/dataset"
)

// 轻量 facade：便于用户直接 import "ratekit" 使用核心抽象。
type Rating = core.Rating
type Collection = dataset.Collection
type IndexedStore = dataset.IndexedStore

// NewIndexedStore 创建一个空的评分存储。
func NewIndexedStore() *IndexedStore {
	return dataset.NewIndexedStore()
}

// NewRating 创建一条评分事件，并校验 ID 合法性。
func NewRating(userID, itemID int, value float64) (Rating, error) {
	return core.NewRating(userID, itemID, value)
}
