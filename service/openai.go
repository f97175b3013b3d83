package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

var errEmptyEmbedding = errors.New("no embedding in response")

// OpenAIEmbedder 是 OpenAI 兼容 /embeddings 接口的 core.TextEmbedder 实现。
//
// 工程特征：
//   - 兼容 OpenAI、LocalAI 及其他兼容服务（通过 Endpoint 切换）
//   - 每次调用有独立超时
//   - 熔断保护：连续失败达到阈值后快速失败，返回 UNAVAILABLE
type OpenAIEmbedder struct {
	endpoint string
	model    string
	apiKey   string
	timeout  time.Duration

	breakerCfg    BreakerConfig
	onStateChange func(name string, from, to gobreaker.State)
	httpClient    *http.Client

	client  *openai.Client
	breaker *gobreaker.CircuitBreaker[core.Vector]
}

// OpenAIOption OpenAIEmbedder 配置选项
type OpenAIOption func(*OpenAIEmbedder)

// WithOpenAITimeout 设置单次调用超时
func WithOpenAITimeout(timeout time.Duration) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.timeout = timeout }
}

// WithOpenAIKey 设置 API Key
func WithOpenAIKey(key string) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.apiKey = key }
}

// WithOpenAIBreaker 设置熔断参数，零值字段使用默认值
func WithOpenAIBreaker(cfg BreakerConfig) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		def := DefaultBreakerConfig()
		if cfg.MaxRequests == 0 {
			cfg.MaxRequests = def.MaxRequests
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = def.Timeout
		}
		if cfg.FailureThreshold == 0 {
			cfg.FailureThreshold = def.FailureThreshold
		}
		e.breakerCfg = cfg
	}
}

// WithOpenAIStateListener 监听熔断状态变化（如上报 metrics）
func WithOpenAIStateListener(fn func(name string, from, to gobreaker.State)) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.onStateChange = fn }
}

// WithOpenAIHTTPClient 设置自定义 HTTP 客户端
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.httpClient = client }
}

// NewOpenAIEmbedder 创建文本向量化客户端。
func NewOpenAIEmbedder(endpoint, model string, opts ...OpenAIOption) *OpenAIEmbedder {
	e := &OpenAIEmbedder{
		endpoint:   endpoint,
		model:      model,
		timeout:    10 * time.Second,
		breakerCfg: DefaultBreakerConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}

	cfg := openai.DefaultConfig(e.apiKey)
	if e.endpoint != "" {
		cfg.BaseURL = e.endpoint
	}
	if e.httpClient != nil {
		cfg.HTTPClient = e.httpClient
	}
	e.client = openai.NewClientWithConfig(cfg)

	bc := e.breakerCfg
	e.breaker = gobreaker.NewCircuitBreaker[core.Vector](gobreaker.Settings{
		Name:        "embedder." + e.model,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		// 调用方主动取消不算服务故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("embedder circuit breaker state changed")
			if e.onStateChange != nil {
				e.onStateChange(name, from, to)
			}
		},
	})
	return e
}

// Embed 实现 core.TextEmbedder。
//   - 熔断打开或服务出错：UNAVAILABLE
//   - 响应中没有向量：INTERNAL_ERROR
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (core.Vector, error) {
	vec, err := e.breaker.Execute(func() (core.Vector, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, errEmptyEmbedding
		}
		return core.Vector(resp.Data[0].Embedding), nil
	})
	if err == nil {
		return vec, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, core.WrapDomainError(core.ModuleEmbedder, core.ErrorCodeUnavailable, "text embedder circuit open", err)
	case errors.Is(err, errEmptyEmbedding):
		return nil, core.WrapDomainError(core.ModuleEmbedder, core.ErrorCodeInternalError, "text embedder returned no vector", err)
	default:
		return nil, core.WrapDomainError(core.ModuleEmbedder, core.ErrorCodeUnavailable, "text embedder request failed", err)
	}
}

// State 返回熔断器当前状态
func (e *OpenAIEmbedder) State() gobreaker.State {
	return e.breaker.State()
}

func (e *OpenAIEmbedder) Name() string { return "openai" }

var _ core.TextEmbedder = (*OpenAIEmbedder)(nil)
