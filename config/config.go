// Package config 加载服务配置：结构体默认值 -> YAML 文件 -> 环境变量，逐层覆盖。
package config

import (
	"time"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/service"
)

// Config 是服务的全部配置
type Config struct {
	Scoring   ScoringConfig   `koanf:"scoring"`
	Recommend RecommendConfig `koanf:"recommend"`
	Source    SourceConfig    `koanf:"source"`
	Embedder  EmbedderConfig  `koanf:"embedder"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ScoringConfig 是打分与召回的静态参数，实现 core.ScoringConfig。
type ScoringConfig struct {
	SimilarityWeight float64 `koanf:"similarity_weight" validate:"gte=0,lte=1"`
	DistanceWeight   float64 `koanf:"distance_weight" validate:"gte=0,lte=1"`
	MaxDistance      float64 `koanf:"max_distance_km" validate:"gt=0"`
	Threshold        float64 `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
	TopN             int     `koanf:"default_top_n" validate:"gte=1"`
	TopNLimit        int     `koanf:"max_top_n" validate:"gte=1"`
	Oversample       int     `koanf:"oversample_factor" validate:"gte=1"`
}

func (s *ScoringConfig) DefaultSimilarityWeight() float64 { return s.SimilarityWeight }
func (s *ScoringConfig) DefaultDistanceWeight() float64   { return s.DistanceWeight }
func (s *ScoringConfig) MaxDistanceKm() float64           { return s.MaxDistance }
func (s *ScoringConfig) SimilarityThreshold() float64     { return s.Threshold }
func (s *ScoringConfig) DefaultTopN() int                 { return s.TopN }
func (s *ScoringConfig) MaxTopN() int                     { return s.TopNLimit }
func (s *ScoringConfig) OversampleFactor() int            { return s.Oversample }

var _ core.ScoringConfig = (*ScoringConfig)(nil)

// RecommendConfig 是引擎的运行参数
type RecommendConfig struct {
	// Workers 相似度计算的并发分片数，<= 1 为单线程
	Workers int `koanf:"workers" validate:"gte=0"`

	// ExcludedIDs 全局排除的物品（如已售出车源），环境变量中用逗号分隔
	ExcludedIDs []string `koanf:"excluded_ids"`
}

// SourceConfig 是快照数据源
type SourceConfig struct {
	// Type 取值 file / redis / postgres
	Type string `koanf:"type" validate:"oneof=file redis postgres"`

	// RefreshInterval > 0 时定期重新加载快照
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=0"`

	// LoadTimeout 单次加载的超时
	LoadTimeout time.Duration `koanf:"load_timeout" validate:"gt=0"`

	File     FileSourceConfig     `koanf:"file"`
	Redis    RedisSourceConfig    `koanf:"redis"`
	Postgres PostgresSourceConfig `koanf:"postgres"`
}

type FileSourceConfig struct {
	Path string `koanf:"path"`
}

type RedisSourceConfig struct {
	Addr          string `koanf:"addr"`
	Password      string `koanf:"password"`
	DB            int    `koanf:"db" validate:"gte=0"`
	ItemsKey      string `koanf:"items_key"`
	EmbeddingsKey string `koanf:"embeddings_key"`
}

type PostgresSourceConfig struct {
	DSN             string `koanf:"dsn"`
	ItemsTable      string `koanf:"items_table"`
	EmbeddingsTable string `koanf:"embeddings_table"`
}

// EmbedderConfig 是文本向量化服务配置
type EmbedderConfig struct {
	// Type 取值 openai / none
	Type     string        `koanf:"type" validate:"oneof=openai none"`
	Endpoint string        `koanf:"endpoint"`
	Model    string        `koanf:"model"`
	APIKey   string        `koanf:"api_key"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`

	// CacheSize / CacheTTL 配置查询向量缓存，任一为 0 时不缓存
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// ServiceConfig 转换为 service 包的工厂配置
func (e EmbedderConfig) ServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Type:      service.ServiceType(e.Type),
		Endpoint:  e.Endpoint,
		ModelName: e.Model,
		APIKey:    e.APIKey,
		Timeout:   e.Timeout,
		Breaker: service.BreakerConfig{
			MaxRequests:      e.BreakerMaxRequests,
			Interval:         e.BreakerInterval,
			Timeout:          e.BreakerTimeout,
			FailureThreshold: e.BreakerFailureThreshold,
		},
	}
}

// ServerConfig 是 HTTP 服务配置
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MetricsEnabled  bool          `koanf:"metrics_enabled"`
}

// LoggingConfig 是日志配置
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// LoggingConfig 转换为 logging.Config
func (l LoggingConfig) LoggerConfig() logging.Config {
	return logging.Config{Level: l.Level, Format: l.Format, Caller: l.Caller}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			SimilarityWeight: 0.7,
			DistanceWeight:   0.3,
			MaxDistance:      500,
			Threshold:        0.5,
			TopN:             10,
			TopNLimit:        100,
			Oversample:       3,
		},
		Recommend: RecommendConfig{
			Workers:     1,
			ExcludedIDs: []string{},
		},
		Source: SourceConfig{
			Type:        "file",
			LoadTimeout: 2 * time.Minute,
			File: FileSourceConfig{
				Path: "data/cars_embeddings.json",
			},
			Redis: RedisSourceConfig{
				Addr:          "localhost:6379",
				ItemsKey:      "carreco:items",
				EmbeddingsKey: "carreco:embeddings",
			},
			Postgres: PostgresSourceConfig{
				ItemsTable:      "cars",
				EmbeddingsTable: "car_embeddings",
			},
		},
		Embedder: EmbedderConfig{
			Type:                    "none",
			Endpoint:                "http://localhost:8080/v1",
			Model:                   "text-embedding-3-small",
			Timeout:                 10 * time.Second,
			BreakerMaxRequests:      1,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
			CacheSize:               1000,
			CacheTTL:                10 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 20 * time.Second,
			MetricsEnabled:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
