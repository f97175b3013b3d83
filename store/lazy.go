package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

// loadTimeout 是后台加载的上限，避免挂起的数据源一直占住加载。
const loadTimeout = 5 * time.Minute

// snapshot 保存一次性加载的结果。
//
// 语义：
//   - 首次访问时加载；并发的首次访问只触发一次加载，其余等待同一结果
//   - 等待方遵守各自的 ctx，超时或取消立即返回，加载继续在后台完成
//   - 加载成功后发布指针，之后读取只做一次原子读
//   - 加载失败不缓存，下次访问重试
//   - Refresh 加载新快照后整体替换，读者看到的要么是旧快照要么是新快照
type snapshot[T any] struct {
	group     singleflight.Group
	refreshMu sync.Mutex
	value     atomic.Pointer[T]
	load      func(ctx context.Context) (*T, error)
	name      string
}

func (s *snapshot[T]) get(ctx context.Context) (*T, error) {
	if v := s.value.Load(); v != nil {
		return v, nil
	}

	// 加载不随单个调用方取消，保留 ctx 中的 logger 与 request_id
	ch := s.group.DoChan(s.name, func() (any, error) {
		if v := s.value.Load(); v != nil {
			return v, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		v, err := s.timedLoad(lctx)
		if err != nil {
			return nil, err
		}
		// Refresh 可能已先发布
		if !s.value.CompareAndSwap(nil, v) {
			v = s.value.Load()
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *snapshot[T]) refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	v, err := s.timedLoad(ctx)
	if err != nil {
		return err
	}
	s.value.Store(v)
	return nil
}

func (s *snapshot[T]) timedLoad(ctx context.Context) (*T, error) {
	start := time.Now()
	v, err := s.load(ctx)
	log := logging.Ctx(ctx)
	if err != nil {
		log.Error().Err(err).Str("store", s.name).Msg("snapshot load failed")
		return nil, err
	}
	log.Info().Str("store", s.name).Dur("took", time.Since(start)).Msg("snapshot loaded")
	return v, nil
}

func (s *snapshot[T]) loaded() bool {
	return s.value.Load() != nil
}

// LazyEmbeddingStore 在首次访问时通过 loader 加载向量快照。
type LazyEmbeddingStore struct {
	snap snapshot[MemoryEmbeddingStore]
}

// NewLazyEmbeddingStore 创建懒加载向量存储。
func NewLazyEmbeddingStore(loader core.EmbeddingLoader) *LazyEmbeddingStore {
	l := &LazyEmbeddingStore{}
	l.snap.name = "embeddings"
	l.snap.load = func(ctx context.Context) (*MemoryEmbeddingStore, error) {
		vectors, err := loader.LoadEmbeddings(ctx)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleEmbedding, core.ErrorCodeUnavailable,
				"embedding store: load failed", err)
		}
		return NewMemoryEmbeddingStore(vectors)
	}
	return l
}

func (l *LazyEmbeddingStore) Get(ctx context.Context, id string) (core.Vector, error) {
	s, err := l.snap.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (l *LazyEmbeddingStore) Entries(ctx context.Context) ([]core.Embedding, error) {
	s, err := l.snap.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx)
}

func (l *LazyEmbeddingStore) Dimension(ctx context.Context) (int, error) {
	s, err := l.snap.get(ctx)
	if err != nil {
		return 0, err
	}
	return s.Dimension(ctx)
}

func (l *LazyEmbeddingStore) Len(ctx context.Context) (int, error) {
	s, err := l.snap.get(ctx)
	if err != nil {
		return 0, err
	}
	return s.Len(ctx)
}

// Loaded 报告快照是否已加载成功（不触发加载）。
func (l *LazyEmbeddingStore) Loaded() bool { return l.snap.loaded() }

// Refresh 重新加载并原子替换快照；失败时保留旧快照。
func (l *LazyEmbeddingStore) Refresh(ctx context.Context) error { return l.snap.refresh(ctx) }

// LazyCatalog 在首次访问时通过 loader 加载目录快照。
type LazyCatalog struct {
	snap snapshot[MemoryCatalog]
}

// NewLazyCatalog 创建懒加载目录。
func NewLazyCatalog(loader core.CatalogLoader) *LazyCatalog {
	l := &LazyCatalog{}
	l.snap.name = "catalog"
	l.snap.load = func(ctx context.Context) (*MemoryCatalog, error) {
		items, err := loader.LoadItems(ctx)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
				"catalog: load failed", err)
		}
		return NewMemoryCatalog(items), nil
	}
	return l
}

func (l *LazyCatalog) FindByID(ctx context.Context, id string) (*core.Item, error) {
	c, err := l.snap.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.FindByID(ctx, id)
}

func (l *LazyCatalog) FindAll(ctx context.Context, filters *core.Filters, skip, limit int) ([]*core.Item, error) {
	c, err := l.snap.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.FindAll(ctx, filters, skip, limit)
}

func (l *LazyCatalog) Count(ctx context.Context, filters *core.Filters) (int, error) {
	c, err := l.snap.get(ctx)
	if err != nil {
		return 0, err
	}
	return c.Count(ctx, filters)
}

// Len 返回目录大小；未加载时触发加载。
func (l *LazyCatalog) Len(ctx context.Context) (int, error) {
	c, err := l.snap.get(ctx)
	if err != nil {
		return 0, err
	}
	return c.Len(), nil
}

func (l *LazyCatalog) Loaded() bool { return l.snap.loaded() }

func (l *LazyCatalog) Refresh(ctx context.Context) error { return l.snap.refresh(ctx) }

var (
	_ core.EmbeddingStore = (*LazyEmbeddingStore)(nil)
	_ core.ItemCatalog    = (*LazyCatalog)(nil)
)
