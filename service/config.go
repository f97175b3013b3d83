package service

import "time"

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeOpenAI ServiceType = "openai" // OpenAI 兼容的 /embeddings 接口（OpenAI、LocalAI 等）
	ServiceTypeNone   ServiceType = "none"   // 不启用文本向量化，by-text 请求返回 UNAVAILABLE
)

// ServiceConfig 文本向量化服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType

	// Endpoint 服务端点，例如 "https://api.openai.com/v1" 或 "http://localhost:8080/v1"
	Endpoint string

	// ModelName 向量模型名称，例如 "text-embedding-3-small"
	ModelName string

	// APIKey 认证密钥（LocalAI 可为空）
	APIKey string

	// Timeout 单次调用超时
	Timeout time.Duration

	// Breaker 熔断配置
	Breaker BreakerConfig
}

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	// MaxRequests 半开状态允许通过的请求数
	MaxRequests uint32

	// Interval 关闭状态下清零计数的周期，0 表示不清零
	Interval time.Duration

	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration

	// FailureThreshold 连续失败多少次后打开
	FailureThreshold uint32
}

// DefaultBreakerConfig 返回默认熔断配置
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}
