package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是数据集加载计划的配置结构（支持 YAML/JSON）。
//
// 示例：
//
//	dataset:
//	  name: movielens
//	  shuffle: true
//	  source:
//	    type: store
//	    config:
//	      backend: redis
//	      addr: localhost:6379
//	      key_prefix: ratings
//	  filters:
//	    - type: expression
//	      config:
//	        expr: "value >= 3.0"
type Config struct {
	Dataset struct {
		Name    string         `yaml:"name" json:"name"`
		Shuffle bool           `yaml:"shuffle" json:"shuffle"`
		Source  SourceConfig   `yaml:"source" json:"source"`
		Filters []FilterConfig `yaml:"filters" json:"filters"`
	} `yaml:"dataset" json:"dataset"`
}

// SourceConfig 是数据源的配置。
type SourceConfig struct {
	Type   string         `yaml:"type" json:"type"`     // store / feast / inline
	Config map[string]any `yaml:"config" json:"config"` // 数据源特定配置
}

// FilterConfig 是单个过滤器的配置。
type FilterConfig struct {
	Type   string         `yaml:"type" json:"type"`     // expression 等
	Config map[string]any `yaml:"config" json:"config"` // 过滤器特定配置
}

// LoadFromYAML 从 YAML 文件加载数据集配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载数据集配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// ParseYAML 直接从字节解析配置（便于测试与内嵌配置）。
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}
