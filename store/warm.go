package store

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Warm 并发预热目录与向量快照，任一失败即返回。
func Warm(ctx context.Context, catalog *LazyCatalog, embeddings *LazyEmbeddingStore) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := catalog.Len(gctx)
		return err
	})
	g.Go(func() error {
		_, err := embeddings.Len(gctx)
		return err
	})
	return g.Wait()
}

// Refresh 并发刷新两份快照；失败的一方保留旧数据。
func Refresh(ctx context.Context, catalog *LazyCatalog, embeddings *LazyEmbeddingStore) error {
	var g errgroup.Group
	g.Go(func() error { return catalog.Refresh(ctx) })
	g.Go(func() error { return embeddings.Refresh(ctx) })
	return g.Wait()
}
