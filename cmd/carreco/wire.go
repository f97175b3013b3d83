package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbarek2002/car-plateform/config"
	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/metrics"
	"github.com/mbarek2002/car-plateform/recommend"
	"github.com/mbarek2002/car-plateform/scoring"
	"github.com/mbarek2002/car-plateform/server"
	"github.com/mbarek2002/car-plateform/service"
	"github.com/mbarek2002/car-plateform/store"
)

// snapshotSource 同时提供目录与向量，close 释放外部连接。
type snapshotSource struct {
	name       string
	catalog    core.CatalogLoader
	embeddings core.EmbeddingLoader
	close      func()
}

func newSource(ctx context.Context, cfg config.SourceConfig) (*snapshotSource, error) {
	switch cfg.Type {
	case "file":
		l := store.NewFileLoader(cfg.File.Path)
		return &snapshotSource{name: "file", catalog: l, embeddings: l, close: func() {}}, nil

	case "redis":
		l, err := store.NewRedisLoader(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.ItemsKey, cfg.Redis.EmbeddingsKey)
		if err != nil {
			return nil, err
		}
		return &snapshotSource{name: l.Name(), catalog: l, embeddings: l, close: func() { _ = l.Close() }}, nil

	case "postgres":
		l, err := store.NewPostgresLoader(ctx, cfg.Postgres.DSN, cfg.Postgres.ItemsTable, cfg.Postgres.EmbeddingsTable)
		if err != nil {
			return nil, err
		}
		return &snapshotSource{name: l.Name(), catalog: l, embeddings: l, close: l.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
	src, err := newSource(connectCtx, cfg.Source)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.Source.Type, err)
	}
	defer src.close()

	catalog := store.NewLazyCatalog(src.catalog)
	embeddings := store.NewLazyEmbeddingStore(src.embeddings)

	storeCtx := storeContext(ctx)

	// 启动时预热；失败不退出，首个请求会再次尝试加载
	warmCtx, cancel := context.WithTimeout(storeCtx, cfg.Source.LoadTimeout)
	err = store.Warm(warmCtx, catalog, embeddings)
	cancel()
	if err != nil {
		logging.Ctx(storeCtx).Warn().Err(err).Str("source", src.name).Msg("Snapshot warm-up failed, will retry on first request")
	} else {
		recordSnapshotSizes(storeCtx, catalog, embeddings)
	}

	embedder, err := service.NewEmbedder(cfg.Embedder.ServiceConfig(),
		service.WithOpenAIStateListener(metrics.RecordBreakerState))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	embedder = service.NewCachedEmbedder(embedder, cfg.Embedder.CacheSize, cfg.Embedder.CacheTTL)
	if c, ok := embedder.(*service.CachedEmbedder); ok {
		defer c.Close()
	}

	opts := []recommend.Option{
		recommend.WithExcludedIDs(cfg.Recommend.ExcludedIDs),
		recommend.WithWorkers(cfg.Recommend.Workers),
		recommend.WithObserver(metrics.EngineObserver{}),
	}
	if embedder != nil {
		opts = append(opts, recommend.WithEmbedder(embedder))
	} else {
		logging.Info().Msg("Text embedder disabled, by-text recommendations will be unavailable")
	}
	engine := recommend.NewEngine(embeddings, catalog, scoring.NewService(&cfg.Scoring), opts...)

	srv := server.New(serverConfig(cfg.Server), engine, catalog, server.WithReadinessChecks(
		server.ReadinessCheck{Name: "catalog", Ready: catalog.Loaded},
		server.ReadinessCheck{Name: "embeddings", Ready: embeddings.Loaded},
		server.ReadinessCheck{Name: "embedder", Ready: func() bool { return embedder != nil }},
	))

	go refreshLoop(storeCtx, cfg.Source, catalog, embeddings)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// 父 ctx 已取消，关闭时另起 context
	if err := srv.Shutdown(context.Background()); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// storeContext 给快照预热与刷新的日志加上 component=store。
func storeContext(ctx context.Context) context.Context {
	return logging.ContextWithLogger(ctx, logging.WithComponent("store"))
}

func serverConfig(c config.ServerConfig) *server.Config {
	return &server.Config{
		Host:            c.Host,
		Port:            c.Port,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		RequestTimeout:  c.RequestTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
		MetricsEnabled:  c.MetricsEnabled,
	}
}

// refreshLoop 按 RefreshInterval 定时刷新快照，收到 SIGHUP 时立即刷新。
func refreshLoop(ctx context.Context, cfg config.SourceConfig, catalog *store.LazyCatalog, embeddings *store.LazyEmbeddingStore) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var tick <-chan time.Time
	if cfg.RefreshInterval > 0 {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-hup:
			logging.Ctx(ctx).Info().Msg("SIGHUP received, refreshing snapshot")
		}
		refreshOnce(ctx, cfg.LoadTimeout, catalog, embeddings)
	}
}

func refreshOnce(ctx context.Context, timeout time.Duration, catalog *store.LazyCatalog, embeddings *store.LazyEmbeddingStore) {
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := store.Refresh(rctx, catalog, embeddings)
	metrics.RecordSnapshotRefresh(err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Snapshot refresh failed, keeping previous snapshot")
		return
	}
	recordSnapshotSizes(ctx, catalog, embeddings)
}

func recordSnapshotSizes(ctx context.Context, catalog *store.LazyCatalog, embeddings *store.LazyEmbeddingStore) {
	items, err := catalog.Len(ctx)
	if err != nil {
		return
	}
	vectors, err := embeddings.Len(ctx)
	if err != nil {
		return
	}
	metrics.UpdateSnapshotSizes(items, vectors)
	logging.Ctx(ctx).Info().Int("items", items).Int("embeddings", vectors).Msg("Snapshot ready")
}
