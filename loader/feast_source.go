package loader

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/ratekit/core"
)

// OnlineFeatureClient 是 Feast 在线特征查询的最小接口。
// 官方 SDK 的 *feastsdk.GrpcClient 直接满足此接口；定义接口是为了测试时可替换。
type OnlineFeatureClient interface {
	GetOnlineFeatures(ctx context.Context, req *feastsdk.OnlineFeaturesRequest) (*feastsdk.OnlineFeaturesResponse, error)
}

// FeastSource 是基于 Feast Feature Store 的评分数据源：
// 对给定的 (user, item) 实体对批量查询一个评分特征，把命中的值产出为评分事件。
//
// 典型场景：离线管线把用户-物品交互分数物化进 Feast 在线存储，
// 训练/评估进程启动时经由此数据源灌入 dataset.IndexedStore。
//
// 实体行布局：每个 (user, item) 对一行，实体键默认 "user_id"/"item_id"。
// 特征缺失的实体对被跳过，不视为错误。
type FeastSource struct {
	Client OnlineFeatureClient

	// Project Feast 项目名称
	Project string

	// Feature 评分特征名称，例如 "user_item_stats:rating"
	Feature string

	// UserEntity / ItemEntity 实体键名，默认 "user_id" / "item_id"
	UserEntity string
	ItemEntity string

	// Pairs 待查询的 (userID, itemID) 实体对
	Pairs [][2]int
}

// NewFeastGrpcClient 创建官方 SDK 的 gRPC 客户端（Feature Server 默认端口 6565）。
func NewFeastGrpcClient(host string, port int) (OnlineFeatureClient, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("loader: feast grpc client: %w", err)
	}
	return client, nil
}

var _ core.RatingSource = (*FeastSource)(nil)

func (s *FeastSource) Name() string {
	return "loader.feast"
}

// Ratings 实现 core.RatingSource：一次批量查询，按 Pairs 顺序回放命中的评分。
func (s *FeastSource) Ratings(ctx context.Context, yield func(core.Rating) bool) error {
	if s.Client == nil {
		return core.NewDomainError(core.ModuleLoader, core.ErrorCodeInvalidInput, "loader: feast client is required")
	}
	if s.Feature == "" {
		return core.NewDomainError(core.ModuleLoader, core.ErrorCodeInvalidInput, "loader: feast rating feature is required")
	}
	if len(s.Pairs) == 0 {
		return nil
	}

	userEntity := s.UserEntity
	if userEntity == "" {
		userEntity = "user_id"
	}
	itemEntity := s.ItemEntity
	if itemEntity == "" {
		itemEntity = "item_id"
	}

	// 构建实体行：每个 (user, item) 对一行
	entityRows := make([]feastsdk.Row, len(s.Pairs))
	for i, pair := range s.Pairs {
		entityRows[i] = feastsdk.Row{
			userEntity: feastsdk.Int64Val(int64(pair[0])),
			itemEntity: feastsdk.Int64Val(int64(pair[1])),
		}
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: []string{s.Feature},
		Entities: entityRows,
		Project:  s.Project,
	})
	if err != nil {
		return fmt.Errorf("loader: feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(s.Pairs) {
		return fmt.Errorf("loader: feast row count mismatch: expected %d, got %d", len(s.Pairs), len(rows))
	}

	for i, row := range rows {
		val, exists := row[s.Feature]
		if !exists {
			continue
		}
		value, ok := numericValue(val)
		if !ok {
			continue // 特征缺失或非数值类型，跳过该实体对
		}
		r := core.Rating{UserID: s.Pairs[i][0], ItemID: s.Pairs[i][1], Value: value}
		if !yield(r) {
			return nil
		}
	}
	return nil
}

// numericValue 从 Feast 的 protobuf Value 中提取数值特征。
func numericValue(val *feasttypes.Value) (float64, bool) {
	if val == nil {
		return 0, false
	}
	switch v := val.GetVal().(type) {
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val), true
	default:
		return 0, false
	}
}
