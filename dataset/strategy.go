package dataset

import "github.com/rushteam/ratekit/core"

// 本文件集中放置 IndexedStore 的策略选择与索引构建逻辑：
// 把"选哪个结构来扫"做成独立的显式步骤，便于单独审计与测试，
// 而不是散落在各操作里的内联分支。

// scanPlan 是 Find 的扫描路由决策结果。
type scanPlan int

const (
	scanNone   scanPlan = iota // 没有任何可用结构
	scanByUser                 // 扫 byUser[userID]
	scanByItem                 // 扫 byItem[itemID]
	scanAll                    // 退回权威序列
)

// indexKey 标识一个分组维度，用于 RemoveUser / RemoveItem 共用同一套候选选取逻辑。
type indexKey int

const (
	byUserKey indexKey = iota
	byItemKey
)

// findPlan 做基于成本的路由选择：
//
//   - 两个索引槽位都可用时，比较子序列长度，短的胜出；持平优先 byUser
//   - 只有一个可用时用那一个；索引未构建或 ID 越界都算不可用
//   - 两个都不可用时退回扫 all
//   - 连 all 都没有时（理论上不会发生）报告 scanNone
//
// 平局规则与回退顺序是有意的成本优化，调用方可以依赖这一行为。
func (s *IndexedStore) findPlan(userID, itemID int) scanPlan {
	userUsable := s.byUser != nil && userID >= 0 && userID < len(s.byUser)
	itemUsable := s.byItem != nil && itemID >= 0 && itemID < len(s.byItem)

	switch {
	case userUsable && itemUsable:
		if s.byItem[itemID].Count() < s.byUser[userID].Count() {
			return scanByItem
		}
		return scanByUser
	case userUsable:
		return scanByUser
	case itemUsable:
		return scanByItem
	case s.all != nil:
		return scanAll
	default:
		return scanNone
	}
}

// evictionCandidates 为批量驱逐选取候选集，恰好选用一个数据源（优先级固定）：
//
//   - 本维度的索引已构建：直接取对应槽位的子序列（越界即空）
//   - 否则扫权威序列 all
//   - 否则（all 缺席时）扫另一维度的每个子序列
//
// 返回的是副本：调用方随后会逐条 Remove，不能一边删一边遍历内部切片。
func (s *IndexedStore) evictionCandidates(key indexKey, id int) []core.Rating {
	own, other := s.byUser, s.byItem
	match := func(r core.Rating) bool { return r.UserID == id }
	if key == byItemKey {
		own, other = s.byItem, s.byUser
		match = func(r core.Rating) bool { return r.ItemID == id }
	}

	switch {
	case own != nil:
		if id < 0 || id >= len(own) {
			return nil
		}
		return append([]core.Rating(nil), own[id].Ratings()...)
	case s.all != nil:
		var out []core.Rating
		for _, r := range s.all.Ratings() {
			if match(r) {
				out = append(out, r)
			}
		}
		return out
	default:
		var out []core.Rating
		for _, sub := range other {
			for _, r := range sub.Ratings() {
				if match(r) {
					out = append(out, r)
				}
			}
		}
		return out
	}
}

// reserveSlots 以空子序列扩展索引，直到 id 成为合法下标。
func reserveSlots(index []*Collection, id int) []*Collection {
	for len(index) <= id {
		index = append(index, NewCollection())
	}
	return index
}

// buildIndex 从权威序列一次扫描构建分组索引：按插入序逐条 reserve 并归入槽位，
// 保证子序列内部保持插入顺序。
func buildIndex(all *Collection, keyOf func(core.Rating) int) []*Collection {
	index := make([]*Collection, 0)
	for _, r := range all.Ratings() {
		id := keyOf(r)
		index = reserveSlots(index, id)
		index[id].Append(r)
	}
	return index
}
