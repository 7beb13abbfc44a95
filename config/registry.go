package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/ratekit/core"
	"github.com/rushteam/ratekit/filter"
)

// SourceBuilder 根据 config 构建一个评分数据源。
// 各组件在 init 中调用 RegisterSource(typeName, builder) 即可被配置驱动。
type SourceBuilder func(config map[string]any) (core.RatingSource, error)

// FilterBuilder 根据 config 构建一个评分过滤器。
type FilterBuilder func(config map[string]any) (filter.Filter, error)

var (
	registryMu     sync.RWMutex
	sourceBuilders = make(map[string]SourceBuilder)
	filterBuilders = make(map[string]FilterBuilder)
)

// RegisterSource 注册一种数据源的构建逻辑，供配置驱动使用。
func RegisterSource(typeName string, builder SourceBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	sourceBuilders[typeName] = builder
}

// RegisterFilter 注册一种过滤器的构建逻辑，供配置驱动使用。
func RegisterFilter(typeName string, builder FilterBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	filterBuilders[typeName] = builder
}

// SupportedSources 返回当前已注册的数据源类型列表（排序），用于错误提示与校验。
func SupportedSources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(sourceBuilders))
	for t := range sourceBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SupportedFilters 返回当前已注册的过滤器类型列表（排序）。
func SupportedFilters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(filterBuilders))
	for t := range filterBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func buildSource(typeName string, cfg map[string]any) (core.RatingSource, error) {
	registryMu.RLock()
	builder, ok := sourceBuilders[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source type %q, supported: %v", typeName, SupportedSources())
	}
	return builder(cfg)
}

func buildFilter(typeName string, cfg map[string]any) (filter.Filter, error) {
	registryMu.RLock()
	builder, ok := filterBuilders[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown filter type %q, supported: %v", typeName, SupportedFilters())
	}
	return builder(cfg)
}
