package dataset

import "github.com/rushteam/ratekit/core"

// IndexedStore 是评分数据集的三视图存储：
//
//   - all：权威的插入序序列，构造时创建，贯穿整个生命周期
//   - byUser / byItem：按用户 / 物品分组的派生索引，下标即稠密 ID
//
// 派生索引是惰性构建的缓存视图：首次读取时从 all 一次性构建（ByUser / ByItem），
// 一旦建成就随每次变更同步维护，直到存储销毁，不会为回收内存而拆除。
// 每个变更操作遵循同一条规则："对每个当前已存在的视图做同步更新"——
// 尚未构建的视图不被触碰，首次读取时会从 all 忠实重建。
//
// 并发模型：单线程变更，不做内部加锁。嵌入系统如需并发，应以单写锁保护整个
// 存储（索引构建也是写操作）。
type IndexedStore struct {
	all    *Collection
	byUser []*Collection // nil 表示尚未构建
	byItem []*Collection // nil 表示尚未构建

	// 水位线：见过的最大 ID，只增不减（删除不回退）。未见过任何事件时为 -1。
	maxUserID int
	maxItemID int
}

// IndexedStore 实现 core.RatingSink，可直接作为批量灌入的目标。
var _ core.RatingSink = (*IndexedStore)(nil)

// NewIndexedStore 创建一个空的评分存储。此时两个派生索引均未构建。
func NewIndexedStore() *IndexedStore {
	return &IndexedStore{
		all:       NewCollection(),
		maxUserID: -1,
		maxItemID: -1,
	}
}

// Add 追加一条评分事件。
//
// 这是保持三视图一致的核心步骤：
//  1. 追加到 all，更新水位线（取 max，从不回退）
//  2. 对每个已构建的索引：先 reserve 到事件 ID 对应的槽位，再追加进去
//
// 未构建的索引保持不动，首次读取时会从 all 重建出同样的内容。
func (s *IndexedStore) Add(r core.Rating) {
	s.all.Append(r)
	if r.UserID > s.maxUserID {
		s.maxUserID = r.UserID
	}
	if r.ItemID > s.maxItemID {
		s.maxItemID = r.ItemID
	}
	if s.byUser != nil {
		s.byUser = reserveSlots(s.byUser, r.UserID)
		s.byUser[r.UserID].Append(r)
	}
	if s.byItem != nil {
		s.byItem = reserveSlots(s.byItem, r.ItemID)
		s.byItem[r.ItemID].Append(r)
	}
}

// ReserveUser 为用户 id 预留索引槽位：向 byUser 追加空子序列直到 id 成为合法下标。
// 索引尚未构建时是 no-op（没有可预留的对象）。
func (s *IndexedStore) ReserveUser(id int) {
	if s.byUser != nil {
		s.byUser = reserveSlots(s.byUser, id)
	}
}

// ReserveItem 同 ReserveUser，作用于 byItem。
func (s *IndexedStore) ReserveItem(id int) {
	if s.byItem != nil {
		s.byItem = reserveSlots(s.byItem, id)
	}
}

// Remove 移除一条评分（首个结构相等匹配）。
// 每个结构独立更新：索引只在已构建且 ID 在界内时参与；all 始终参与。
// 索引越界按"槽位不存在"处理，不是错误——删除不会因为某个索引还没物化而失败。
// 返回 all 中是否确实存在并移除了该评分。
func (s *IndexedStore) Remove(r core.Rating) bool {
	if s.byUser != nil && r.UserID >= 0 && r.UserID < len(s.byUser) {
		s.byUser[r.UserID].Remove(r)
	}
	if s.byItem != nil && r.ItemID >= 0 && r.ItemID < len(s.byItem) {
		s.byItem[r.ItemID].Remove(r)
	}
	return s.all.Remove(r)
}

// RemoveUser 移除属于 userID 的全部评分，返回移除条数。
//
// 候选集的选取是显式的单一策略（见 evictionCandidates）：按优先级取第一个可用
// 的数据源扫一遍，绝不冗余地扫两个；之后逐条经由 Remove 清理所有已存在的结构。
func (s *IndexedStore) RemoveUser(userID int) int {
	candidates := s.evictionCandidates(byUserKey, userID)
	for _, r := range candidates {
		s.Remove(r)
	}
	return len(candidates)
}

// RemoveItem 移除关于 itemID 的全部评分，返回移除条数。与 RemoveUser 对称。
func (s *IndexedStore) RemoveItem(itemID int) int {
	candidates := s.evictionCandidates(byItemKey, itemID)
	for _, r := range candidates {
		s.Remove(r)
	}
	return len(candidates)
}

// Find 查找同时匹配 userID 和 itemID 的第一条评分。
// 先用 findPlan 做基于成本的路由选择，再扫描选中的结构。
// 未找到返回 (Rating{}, false)。
func (s *IndexedStore) Find(userID, itemID int) (core.Rating, bool) {
	switch s.findPlan(userID, itemID) {
	case scanByUser:
		return s.byUser[userID].Find(userID, itemID)
	case scanByItem:
		return s.byItem[itemID].Find(userID, itemID)
	case scanAll:
		return s.all.Find(userID, itemID)
	default:
		return core.Rating{}, false
	}
}

// ByUser 返回按用户分组的索引，首次调用时从 all 构建（惰性、幂等）。
// 下标是用户 ID；长度覆盖所有出现过的用户 ID（至少 maxUserID+1）。
func (s *IndexedStore) ByUser() []*Collection {
	if s.byUser == nil {
		s.byUser = buildIndex(s.all, func(r core.Rating) int { return r.UserID })
	}
	return s.byUser
}

// ByItem 返回按物品分组的索引，首次调用时从 all 构建（惰性、幂等）。
func (s *IndexedStore) ByItem() []*Collection {
	if s.byItem == nil {
		s.byItem = buildIndex(s.all, func(r core.Rating) int { return r.ItemID })
	}
	return s.byItem
}

// UserRatings 返回用户 userID 的子序列（必要时构建索引并预留槽位）。
func (s *IndexedStore) UserRatings(userID int) *Collection {
	s.ByUser()
	s.ReserveUser(userID)
	return s.byUser[userID]
}

// ItemRatings 返回物品 itemID 的子序列（必要时构建索引并预留槽位）。
func (s *IndexedStore) ItemRatings(itemID int) *Collection {
	s.ByItem()
	s.ReserveItem(itemID)
	return s.byItem[itemID]
}

// All 返回权威的插入序序列。
func (s *IndexedStore) All() *Collection {
	return s.all
}

// Shuffle 只重排 all 的内部顺序。已构建的索引不重排也不失效：
// 不变式约束的是成员关系而非顺序，分组视图的逐实体顺序不受 all 重排影响。
func (s *IndexedStore) Shuffle() {
	s.all.Shuffle()
}

// Average 委托给 all：全部未删除评分的算术均值，空存储为 0。
func (s *IndexedStore) Average() float64 {
	return s.all.Average()
}

// Count 委托给 all。
func (s *IndexedStore) Count() int {
	return s.all.Count()
}

// MaxUserID 返回见过的最大用户 ID（水位线，只增不减）。从未插入过时为 -1。
func (s *IndexedStore) MaxUserID() int {
	return s.maxUserID
}

// MaxItemID 返回见过的最大物品 ID（水位线，只增不减）。从未插入过时为 -1。
func (s *IndexedStore) MaxItemID() int {
	return s.maxItemID
}
