package service

import (
	"fmt"
	"time"

	"github.com/mbarek2002/car-plateform/core"
)

// NewEmbedder 根据配置创建 core.TextEmbedder（工厂方法）。
// Type 为 none 时返回 (nil, nil)。
func NewEmbedder(config *ServiceConfig, opts ...OpenAIOption) (core.TextEmbedder, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	switch config.Type {
	case ServiceTypeNone:
		return nil, nil

	case ServiceTypeOpenAI:
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		all := []OpenAIOption{
			WithOpenAITimeout(timeout),
			WithOpenAIBreaker(config.Breaker),
		}
		if config.APIKey != "" {
			all = append(all, WithOpenAIKey(config.APIKey))
		}
		all = append(all, opts...)
		return NewOpenAIEmbedder(config.Endpoint, config.ModelName, all...), nil

	default:
		return nil, fmt.Errorf("unsupported embedder type: %s", config.Type)
	}
}

// ValidateConfig 验证服务配置
func ValidateConfig(config *ServiceConfig) error {
	if config == nil {
		return fmt.Errorf("config is required")
	}
	if config.Type == ServiceTypeNone {
		return nil
	}
	if config.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if config.ModelName == "" {
		return fmt.Errorf("model name is required")
	}
	return nil
}
