package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/ratekit/core"
)

// StoreSource 是基于 core.Store 接口的评分数据源。
// 从 Redis/内存等存储中读取离线产出的评分分片。
//
// key 布局：
//
//	用户列表：{KeyPrefix}:users          → JSON []int
//	用户分片：{KeyPrefix}:user:{userID}  → JSON map[itemID]value
//
// 分片按用户并发拉取（errgroup + 信号量限流），但产出顺序是确定的：
// 按用户列表顺序、用户内按物品 ID 升序。
type StoreSource struct {
	Store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "ratings"
	KeyPrefix string

	// MaxConcurrent 拉取分片的最大并发数（0 表示不限制）
	MaxConcurrent int
}

// NewStoreSource 创建一个基于 core.Store 的评分数据源。
func NewStoreSource(s core.Store, keyPrefix string) *StoreSource {
	if keyPrefix == "" {
		keyPrefix = "ratings"
	}
	return &StoreSource{
		Store:     s,
		KeyPrefix: keyPrefix,
	}
}

var _ core.RatingSource = (*StoreSource)(nil)

func (s *StoreSource) Name() string {
	return "loader.store"
}

// Ratings 实现 core.RatingSource：拉取全部用户分片并顺序回放。
func (s *StoreSource) Ratings(ctx context.Context, yield func(core.Rating) bool) error {
	users, err := s.userIDs(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	// 并发拉取各用户的分片；结果按用户列表下标归位，保证回放顺序确定
	shards := make([]map[string]float64, len(users))
	var (
		mu    sync.Mutex
		eg, _ = errgroup.WithContext(ctx)
	)

	// 限流：使用 semaphore 控制并发数
	sem := make(chan struct{}, s.MaxConcurrent)
	if s.MaxConcurrent <= 0 {
		close(sem) // 无限制时直接关闭，避免阻塞
	}

	for i, userID := range users {
		idx, uid := i, userID
		eg.Go(func() error {
			if s.MaxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			shard, err := s.userShard(ctx, uid)
			if err != nil {
				return err
			}
			mu.Lock()
			shards[idx] = shard
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// 串行回放：用户内按物品 ID 升序
	for i, userID := range users {
		itemIDs := make([]int, 0, len(shards[i]))
		items := make(map[int]float64, len(shards[i]))
		for k, v := range shards[i] {
			itemID, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("loader: bad item id %q in shard of user %d: %w", k, userID, err)
			}
			itemIDs = append(itemIDs, itemID)
			items[itemID] = v
		}
		sort.Ints(itemIDs)
		for _, itemID := range itemIDs {
			if !yield(core.Rating{UserID: userID, ItemID: itemID, Value: items[itemID]}) {
				return nil
			}
		}
	}
	return nil
}

// userIDs 读取用户列表；key 不存在按空数据集处理。
func (s *StoreSource) userIDs(ctx context.Context) ([]int, error) {
	data, err := s.Store.Get(ctx, s.KeyPrefix+":users")
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var users []int
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("loader: parse users list: %w", err)
	}
	return users, nil
}

// userShard 读取单个用户的评分分片；key 不存在按空分片处理。
func (s *StoreSource) userShard(ctx context.Context, userID int) (map[string]float64, error) {
	key := s.KeyPrefix + ":user:" + strconv.Itoa(userID)
	data, err := s.Store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var shard map[string]float64
	if err := json.Unmarshal(data, &shard); err != nil {
		return nil, fmt.Errorf("loader: parse shard of user %d: %w", userID, err)
	}
	return shard, nil
}

// SeedStoreRatings 辅助函数：把一批评分写成 StoreSource 约定的 key 布局。
// 使用 StoreSource + MemoryStore 时，可以用这个函数方便地准备测试数据。
// 同一 (user, item) 出现多次时后写覆盖先写。
func SeedStoreRatings(ctx context.Context, store core.Store, keyPrefix string, ratings []core.Rating) error {
	if keyPrefix == "" {
		keyPrefix = "ratings"
	}

	shards := make(map[int]map[string]float64)
	var users []int
	for _, r := range ratings {
		if shards[r.UserID] == nil {
			shards[r.UserID] = make(map[string]float64)
			users = append(users, r.UserID)
		}
		shards[r.UserID][strconv.Itoa(r.ItemID)] = r.Value
	}
	sort.Ints(users)

	for userID, shard := range shards {
		data, err := json.Marshal(shard)
		if err != nil {
			return err
		}
		key := keyPrefix + ":user:" + strconv.Itoa(userID)
		if err := store.Set(ctx, key, data); err != nil {
			return err
		}
	}

	usersData, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return store.Set(ctx, keyPrefix+":users", usersData)
}
