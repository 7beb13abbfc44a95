package config

import (
	"context"
	"fmt"

	"github.com/rushteam/ratekit/dataset"
	"github.com/rushteam/ratekit/filter"
	"github.com/rushteam/ratekit/loader"
)

// BuildLoader 根据配置构建 Loader（数据源 + 过滤器链）。
func (c *Config) BuildLoader() (*loader.Loader, error) {
	if c.Dataset.Source.Type == "" {
		return nil, fmt.Errorf("dataset %q: source type is required", c.Dataset.Name)
	}
	src, err := buildSource(c.Dataset.Source.Type, c.Dataset.Source.Config)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", c.Dataset.Name, err)
	}

	filters := make([]filter.Filter, 0, len(c.Dataset.Filters))
	for _, fc := range c.Dataset.Filters {
		f, err := buildFilter(fc.Type, fc.Config)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", c.Dataset.Name, err)
		}
		filters = append(filters, f)
	}

	return &loader.Loader{Source: src, Filters: filters}, nil
}

// Populate 按配置构建并灌满一个 IndexedStore：建 Loader、加载、按需洗牌。
func (c *Config) Populate(ctx context.Context) (*dataset.IndexedStore, error) {
	l, err := c.BuildLoader()
	if err != nil {
		return nil, err
	}

	ds := dataset.NewIndexedStore()
	if _, err := l.Load(ctx, ds); err != nil {
		return nil, err
	}
	if c.Dataset.Shuffle {
		ds.Shuffle()
	}
	return ds, nil
}
