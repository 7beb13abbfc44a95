package dataset

import (
	"math/rand"

	"github.com/rushteam/ratekit/core"
)

// Collection 是有序、可变的评分事件序列，并维护运行中的 sum/count 以支持 O(1) 均值。
//
// 并发模型：单线程变更。Collection 不做内部加锁，嵌入系统如需并发访问，
// 应在外层加锁（参考 IndexedStore 的说明）。
type Collection struct {
	ratings []core.Rating
	sum     float64
}

// NewCollection 创建一个空的评分序列。
func NewCollection() *Collection {
	return &Collection{}
}

// Append 在序列末尾追加一条评分，并更新运行中的 sum/count。O(1) 均摊。
func (c *Collection) Append(r core.Rating) {
	c.ratings = append(c.ratings, r)
	c.sum += r.Value
}

// Remove 移除第一条与 r 结构相等的评分（首个匹配语义：若存在字段完全相同的
// 重复事件，只移除最先出现的一条）。找到并移除返回 true，不存在返回 false。O(n)。
func (c *Collection) Remove(r core.Rating) bool {
	for i := range c.ratings {
		if c.ratings[i].Equal(r) {
			c.ratings = append(c.ratings[:i], c.ratings[i+1:]...)
			c.sum -= r.Value
			return true
		}
	}
	return false
}

// Find 线性扫描，返回第一条同时匹配 userID 和 itemID 的评分。
// 未找到时返回 (Rating{}, false)，而不是错误。
func (c *Collection) Find(userID, itemID int) (core.Rating, bool) {
	for _, r := range c.ratings {
		if r.UserID == userID && r.ItemID == itemID {
			return r, true
		}
	}
	return core.Rating{}, false
}

// Average 返回运行中的算术均值 sum/count。
// 空序列的均值定义为 0（不是错误，也不是 NaN）。
func (c *Collection) Average() float64 {
	if len(c.ratings) == 0 {
		return 0
	}
	return c.sum / float64(len(c.ratings))
}

// Count 返回当前评分条数。
func (c *Collection) Count() int {
	return len(c.ratings)
}

// Shuffle 原地做 Fisher-Yates 洗牌：给定无偏随机源时每种排列等概率。
// 使用全局随机源；需要可复现实验时用 ShuffleRand 注入种子。
func (c *Collection) Shuffle() {
	rand.Shuffle(len(c.ratings), func(i, j int) {
		c.ratings[i], c.ratings[j] = c.ratings[j], c.ratings[i]
	})
}

// ShuffleRand 同 Shuffle，但使用调用方提供的随机源（用于可复现的离线实验）。
func (c *Collection) ShuffleRand(rng *rand.Rand) {
	rng.Shuffle(len(c.ratings), func(i, j int) {
		c.ratings[i], c.ratings[j] = c.ratings[j], c.ratings[i]
	})
}

// Ratings 按当前内部顺序返回全部评分。
// 返回的是内部切片，调用方只读使用，不得修改。
func (c *Collection) Ratings() []core.Rating {
	return c.ratings
}
