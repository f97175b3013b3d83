// Package server 是推荐服务的 HTTP 边界：chi 路由、请求校验、错误映射。
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/recommend"
)

// Recommender 是 server 依赖的推荐能力，由 recommend.Engine 实现。
type Recommender interface {
	RecommendByItemID(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	RecommendByText(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

var _ Recommender = (*recommend.Engine)(nil)

// ReadinessCheck 是健康检查中的一项
type ReadinessCheck struct {
	Name  string
	Ready func() bool
}

// Config 是 HTTP 服务参数
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

// DefaultConfig 返回默认参数
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		RequestTimeout:  15 * time.Second,
		ShutdownTimeout: 20 * time.Second,
		MetricsEnabled:  true,
	}
}

// Server 是 REST API 服务
type Server struct {
	cfg        *Config
	router     *chi.Mux
	httpServer *http.Server

	engine  Recommender
	catalog core.ItemCatalog
	checks  []ReadinessCheck
}

// Option 配置 Server
type Option func(*Server)

// WithReadinessChecks 设置 /v1/recommendations/health 报告的检查项
func WithReadinessChecks(checks ...ReadinessCheck) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

// New 创建服务；cfg 为 nil 时使用 DefaultConfig。
func New(cfg *Config, engine Recommender, catalog core.ItemCatalog, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		engine:  engine,
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// Handler 返回根 handler（测试用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 返回监听地址
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start 阻塞监听，直到 Shutdown 被调用。
func (s *Server) Start() error {
	logging.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown 等待在途请求结束，最长 ShutdownTimeout。
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	logging.Info().Msg("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
