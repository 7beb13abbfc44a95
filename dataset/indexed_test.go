package dataset

import (
	"testing"

	"github.com/rushteam/ratekit/core"
)

func seedStore(rs ...core.Rating) *IndexedStore {
	s := NewIndexedStore()
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

func multiset(rs []core.Rating) map[core.Rating]int {
	m := make(map[core.Rating]int)
	for _, r := range rs {
		m[r]++
	}
	return m
}

func sameMultiset(a, b map[core.Rating]int) bool {
	if len(a) != len(b) {
		return false
	}
	for r, n := range a {
		if b[r] != n {
			return false
		}
	}
	return true
}

func TestIndexedStore_IndexEquivalence(t *testing.T) {
	s := seedStore(
		rating(0, 2, 1.0),
		rating(3, 0, 2.0),
		rating(0, 2, 1.0), // duplicate on purpose
		rating(3, 5, 4.0),
		rating(1, 5, 3.0),
	)

	byUser := s.ByUser()
	byItem := s.ByItem()

	// byUser[u] 的成员 == all 中 user_id == u 的成员（含重复次数）
	for u := 0; u < len(byUser); u++ {
		var want []core.Rating
		for _, r := range s.All().Ratings() {
			if r.UserID == u {
				want = append(want, r)
			}
		}
		if !sameMultiset(multiset(byUser[u].Ratings()), multiset(want)) {
			t.Errorf("byUser[%d] = %+v, want %+v", u, byUser[u].Ratings(), want)
		}
	}
	for i := 0; i < len(byItem); i++ {
		var want []core.Rating
		for _, r := range s.All().Ratings() {
			if r.ItemID == i {
				want = append(want, r)
			}
		}
		if !sameMultiset(multiset(byItem[i].Ratings()), multiset(want)) {
			t.Errorf("byItem[%d] = %+v, want %+v", i, byItem[i].Ratings(), want)
		}
	}

	// 索引长度覆盖所有出现过的 ID
	if len(byUser) < s.MaxUserID()+1 {
		t.Errorf("len(byUser) = %d, want >= %d", len(byUser), s.MaxUserID()+1)
	}
	if len(byItem) < s.MaxItemID()+1 {
		t.Errorf("len(byItem) = %d, want >= %d", len(byItem), s.MaxItemID()+1)
	}
}

func TestIndexedStore_LazyParity(t *testing.T) {
	ratings := []core.Rating{
		rating(2, 0, 1.0),
		rating(0, 1, 2.0),
		rating(2, 1, 3.0),
		rating(1, 2, 4.0),
	}

	// eager：先物化索引再插入；lazy：插入完才首次读取
	eager := NewIndexedStore()
	eager.ByUser()
	eager.ByItem()
	for _, r := range ratings {
		eager.Add(r)
	}

	lazy := seedStore(ratings...)

	eagerByUser, lazyByUser := eager.ByUser(), lazy.ByUser()
	if len(eagerByUser) != len(lazyByUser) {
		t.Fatalf("byUser length mismatch: eager %d, lazy %d", len(eagerByUser), len(lazyByUser))
	}
	for u := range eagerByUser {
		if !sameMultiset(multiset(eagerByUser[u].Ratings()), multiset(lazyByUser[u].Ratings())) {
			t.Errorf("byUser[%d] differs between eager and lazy materialization", u)
		}
	}
	eagerByItem, lazyByItem := eager.ByItem(), lazy.ByItem()
	for i := range eagerByItem {
		if !sameMultiset(multiset(eagerByItem[i].Ratings()), multiset(lazyByItem[i].Ratings())) {
			t.Errorf("byItem[%d] differs between eager and lazy materialization", i)
		}
	}
}

func TestIndexedStore_EnsureIsIdempotent(t *testing.T) {
	s := seedStore(rating(1, 1, 1.0))
	first := s.ByUser()
	second := s.ByUser()
	if first[0] != second[0] {
		t.Error("ByUser rebuilt an already materialized index")
	}
}

func TestIndexedStore_RemoveConsistency(t *testing.T) {
	tests := []struct {
		name        string
		materialize func(s *IndexedStore)
	}{
		{name: "no index built", materialize: func(s *IndexedStore) {}},
		{name: "byUser built", materialize: func(s *IndexedStore) { s.ByUser() }},
		{name: "byItem built", materialize: func(s *IndexedStore) { s.ByItem() }},
		{name: "both built", materialize: func(s *IndexedStore) { s.ByUser(); s.ByItem() }},
	}
	target := rating(1, 2, 5.0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seedStore(rating(0, 0, 1.0), target, rating(1, 0, 2.0))
			tt.materialize(s)

			if !s.Remove(target) {
				t.Fatal("Remove = false, want true")
			}

			if _, ok := s.All().Find(1, 2); ok {
				t.Error("removed rating still present in all")
			}
			// 移除后再物化（或检查已物化的）索引都不应含有该事件
			if _, ok := s.ByUser()[1].Find(1, 2); ok {
				t.Error("removed rating still present in byUser")
			}
			if _, ok := s.ByItem()[2].Find(1, 2); ok {
				t.Error("removed rating still present in byItem")
			}
		})
	}
}

func TestIndexedStore_RemoveSurvivesUnmaterializedIndex(t *testing.T) {
	// 索引越界/未构建不应让删除失败
	s := seedStore(rating(0, 0, 1.0))
	s.ByUser() // len(byUser) == 1

	late := rating(5, 7, 2.0) // user ID 超出 byUser 当前长度
	if s.Remove(late) {
		t.Error("Remove of absent rating = true, want false")
	}

	s.Add(late)
	// byUser 已扩展到 6 个槽位；byItem 仍未构建
	if !s.Remove(late) {
		t.Error("Remove = false even though rating exists")
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestIndexedStore_BulkEviction(t *testing.T) {
	ratings := []core.Rating{
		rating(0, 0, 1.0),
		rating(1, 0, 2.0),
		rating(1, 1, 3.0),
		rating(2, 1, 4.0),
		rating(1, 2, 5.0),
	}
	tests := []struct {
		name        string
		materialize func(s *IndexedStore)
	}{
		{name: "neither index exists", materialize: func(s *IndexedStore) {}},
		{name: "byUser exists", materialize: func(s *IndexedStore) { s.ByUser() }},
		{name: "byItem exists", materialize: func(s *IndexedStore) { s.ByItem() }},
		{name: "both exist", materialize: func(s *IndexedStore) { s.ByUser(); s.ByItem() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seedStore(ratings...)
			tt.materialize(s)

			if removed := s.RemoveUser(1); removed != 3 {
				t.Fatalf("RemoveUser(1) removed %d, want 3", removed)
			}
			for _, r := range s.All().Ratings() {
				if r.UserID == 1 {
					t.Fatalf("rating %+v survived RemoveUser(1)", r)
				}
			}
			if s.Count() != 2 {
				t.Errorf("count = %d, want 2", s.Count())
			}
			// 已物化的 byItem 中也不应残留
			for i, sub := range s.ByItem() {
				for _, r := range sub.Ratings() {
					if r.UserID == 1 {
						t.Errorf("byItem[%d] still holds %+v", i, r)
					}
				}
			}
		})
	}
}

func TestIndexedStore_RemoveItemSymmetric(t *testing.T) {
	s := seedStore(
		rating(0, 0, 1.0),
		rating(1, 3, 2.0),
		rating(2, 3, 3.0),
	)
	s.ByUser()

	if removed := s.RemoveItem(3); removed != 2 {
		t.Fatalf("RemoveItem(3) removed %d, want 2", removed)
	}
	for _, r := range s.All().Ratings() {
		if r.ItemID == 3 {
			t.Fatalf("rating %+v survived RemoveItem(3)", r)
		}
	}
	for u, sub := range s.ByUser() {
		for _, r := range sub.Ratings() {
			if r.ItemID == 3 {
				t.Errorf("byUser[%d] still holds %+v", u, r)
			}
		}
	}
}

func TestIndexedStore_WatermarkMonotonicity(t *testing.T) {
	s := NewIndexedStore()
	if s.MaxUserID() != -1 || s.MaxItemID() != -1 {
		t.Fatalf("fresh store watermarks = (%d, %d), want (-1, -1)", s.MaxUserID(), s.MaxItemID())
	}

	s.Add(rating(7, 9, 1.0))
	s.Add(rating(2, 3, 1.0))
	if s.MaxUserID() != 7 || s.MaxItemID() != 9 {
		t.Fatalf("watermarks = (%d, %d), want (7, 9)", s.MaxUserID(), s.MaxItemID())
	}

	// 删除持有最大 ID 的用户后水位线不回退
	s.RemoveUser(7)
	if s.MaxUserID() != 7 {
		t.Errorf("MaxUserID dropped to %d after eviction, want 7", s.MaxUserID())
	}
	s.RemoveItem(9)
	if s.MaxItemID() != 9 {
		t.Errorf("MaxItemID dropped to %d after eviction, want 9", s.MaxItemID())
	}
}

func TestIndexedStore_ReserveGrowsOnlyBuiltIndex(t *testing.T) {
	s := NewIndexedStore()

	// 未构建时 no-op
	s.ReserveUser(10)
	if s.byUser != nil {
		t.Fatal("ReserveUser materialized the index, want no-op")
	}

	s.ByUser()
	s.ReserveUser(4)
	if len(s.byUser) != 5 {
		t.Errorf("len(byUser) = %d after ReserveUser(4), want 5", len(s.byUser))
	}
	for i, sub := range s.byUser {
		if sub.Count() != 0 {
			t.Errorf("reserved slot %d not empty", i)
		}
	}

	// 已经够长时不收缩
	s.ReserveUser(1)
	if len(s.byUser) != 5 {
		t.Errorf("ReserveUser(1) shrank index to %d", len(s.byUser))
	}
}

func TestIndexedStore_FindCostBasedRouting(t *testing.T) {
	// byUser[3] 有 2 条，byItem[5] 有 10 条：Find(3,5) 必须路由到 byUser
	s := NewIndexedStore()
	s.Add(rating(3, 5, 1.0))
	s.Add(rating(3, 0, 2.0))
	for u := 10; u < 19; u++ {
		s.Add(rating(u, 5, 0.5))
	}
	s.ByUser()
	s.ByItem()

	if plan := s.findPlan(3, 5); plan != scanByUser {
		t.Fatalf("findPlan(3,5) = %v, want scanByUser", plan)
	}
	got, ok := s.Find(3, 5)
	if !ok || got.Value != 1.0 {
		t.Errorf("Find(3,5) = %+v, %v; want value 1.0, true", got, ok)
	}

	// 反向：byItem[0] 只有 1 条，比 byUser[3] 的 2 条小，路由到 byItem
	if plan := s.findPlan(3, 0); plan != scanByItem {
		t.Errorf("findPlan(3,0) = %v, want scanByItem (byItem[0] is smaller)", plan)
	}
}

func TestIndexedStore_FindPlanFallbacks(t *testing.T) {
	s := seedStore(rating(1, 1, 1.0), rating(2, 2, 2.0))

	// 无索引：退回 all
	if plan := s.findPlan(1, 1); plan != scanAll {
		t.Errorf("findPlan with no index = %v, want scanAll", plan)
	}

	// 只有 byUser：用 byUser；越界的 userID 则不可用
	s.ByUser()
	if plan := s.findPlan(1, 1); plan != scanByUser {
		t.Errorf("findPlan = %v, want scanByUser", plan)
	}
	if plan := s.findPlan(99, 1); plan != scanAll {
		t.Errorf("findPlan out-of-range user = %v, want scanAll", plan)
	}

	// 两个索引且长度相同：平局优先 byUser
	s.ByItem()
	if plan := s.findPlan(1, 1); plan != scanByUser {
		t.Errorf("findPlan tie = %v, want scanByUser", plan)
	}

	if _, ok := s.Find(9, 9); ok {
		t.Error("Find of absent pair = true, want explicit not-found")
	}
}

func TestIndexedStore_ShuffleLeavesIndexesAlone(t *testing.T) {
	s := NewIndexedStore()
	for i := 0; i < 30; i++ {
		s.Add(rating(i%3, i%4, float64(i)))
	}
	before := multiset(s.All().Ratings())
	byUserBefore := make([][]core.Rating, 3)
	for u := 0; u < 3; u++ {
		byUserBefore[u] = append([]core.Rating(nil), s.ByUser()[u].Ratings()...)
	}

	s.Shuffle()

	if !sameMultiset(before, multiset(s.All().Ratings())) {
		t.Fatal("shuffle changed the multiset of all")
	}
	// 已物化索引的逐实体顺序完全不变
	for u := 0; u < 3; u++ {
		got := s.ByUser()[u].Ratings()
		if len(got) != len(byUserBefore[u]) {
			t.Fatalf("byUser[%d] length changed", u)
		}
		for i := range got {
			if !got[i].Equal(byUserBefore[u][i]) {
				t.Fatalf("byUser[%d][%d] reordered by shuffle", u, i)
			}
		}
	}
}

func TestIndexedStore_AverageDelegation(t *testing.T) {
	s := seedStore(rating(0, 0, 1.0), rating(1, 1, 2.0), rating(2, 2, 3.0))
	if got := s.Average(); got != 2.0 {
		t.Errorf("Average = %v, want 2.0", got)
	}
	s.Remove(rating(2, 2, 3.0))
	if got := s.Average(); got != 1.5 {
		t.Errorf("Average after removal = %v, want 1.5", got)
	}
	if got := NewIndexedStore().Average(); got != 0 {
		t.Errorf("Average of empty store = %v, want 0", got)
	}
}
