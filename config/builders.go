package config

import (
	"fmt"

	"github.com/rushteam/ratekit/core"
	"github.com/rushteam/ratekit/filter"
	"github.com/rushteam/ratekit/loader"
	"github.com/rushteam/ratekit/pkg/conv"
	"github.com/rushteam/ratekit/store"
)

// 内置的数据源与过滤器构建器。
// 通过 init 注册，使用配置驱动时无需额外 import。

func init() {
	RegisterSource("store", buildStoreSource)
	RegisterSource("feast", buildFeastSource)
	RegisterSource("inline", buildInlineSource)
	RegisterFilter("expression", buildExpressionFilter)
}

func buildStoreSource(cfg map[string]any) (core.RatingSource, error) {
	var backend core.Store
	name := conv.ConfigGet[string](cfg, "backend", "memory")
	switch name {
	case "memory":
		backend = store.NewMemoryStore()
	case "redis":
		addr := conv.ConfigGet[string](cfg, "addr", "localhost:6379")
		db := conv.ConfigGetInt(cfg, "db", 0)
		rs, err := store.NewRedisStore(addr, db)
		if err != nil {
			return nil, fmt.Errorf("store source: %w", err)
		}
		backend = rs
	default:
		return nil, fmt.Errorf("store source: unknown backend %q", name)
	}

	src := loader.NewStoreSource(backend, conv.ConfigGet[string](cfg, "key_prefix", ""))
	src.MaxConcurrent = conv.ConfigGetInt(cfg, "max_concurrent", 0)
	return src, nil
}

func buildFeastSource(cfg map[string]any) (core.RatingSource, error) {
	feature := conv.ConfigGet[string](cfg, "feature", "")
	if feature == "" {
		return nil, fmt.Errorf("feast source: feature is required")
	}

	host := conv.ConfigGet[string](cfg, "host", "localhost")
	port := conv.ConfigGetInt(cfg, "port", 6565)
	client, err := loader.NewFeastGrpcClient(host, port)
	if err != nil {
		return nil, err
	}

	src := &loader.FeastSource{
		Client:     client,
		Project:    conv.ConfigGet[string](cfg, "project", ""),
		Feature:    feature,
		UserEntity: conv.ConfigGet[string](cfg, "user_entity", ""),
		ItemEntity: conv.ConfigGet[string](cfg, "item_entity", ""),
	}
	if pairs, ok := cfg["pairs"].([]any); ok {
		for _, p := range pairs {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("feast source: pair must be [user_id, item_id], got %v", p)
			}
			u, uok := conv.ToInt(pair[0])
			i, iok := conv.ToInt(pair[1])
			if !uok || !iok {
				return nil, fmt.Errorf("feast source: non-integer pair %v", p)
			}
			src.Pairs = append(src.Pairs, [2]int{u, i})
		}
	}
	return src, nil
}

// buildInlineSource 解析配置内嵌的评分列表：ratings: [[user, item, value], ...]
// 用于示例与测试。
func buildInlineSource(cfg map[string]any) (core.RatingSource, error) {
	raw, ok := cfg["ratings"].([]any)
	if !ok {
		return nil, fmt.Errorf("inline source: ratings list is required")
	}
	src := make(core.SliceSource, 0, len(raw))
	for _, e := range raw {
		triple, ok := e.([]any)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("inline source: rating must be [user_id, item_id, value], got %v", e)
		}
		u, uok := conv.ToInt(triple[0])
		i, iok := conv.ToInt(triple[1])
		v, vok := conv.ToFloat64(triple[2])
		if !uok || !iok || !vok {
			return nil, fmt.Errorf("inline source: malformed rating %v", e)
		}
		r, err := core.NewRating(u, i, v)
		if err != nil {
			return nil, fmt.Errorf("inline source: %w", err)
		}
		src = append(src, r)
	}
	return src, nil
}

func buildExpressionFilter(cfg map[string]any) (filter.Filter, error) {
	return filter.NewExpression(conv.ConfigGet[string](cfg, "expr", ""))
}
