package core

import "context"

// Vector 是固定维度的物品向量。以 float32 存储，计算时提升为 float64。
type Vector []float32

// Embedding 是一条 (物品 ID, 向量)。
type Embedding struct {
	ID     string
	Vector Vector
}

// EmbeddingStore 是物品向量的只读领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 首次访问时加载，整个进程只加载一次，之后只读、无锁
//
// 实现：
//   - store.MemoryEmbeddingStore（内存快照）
//   - store.LazyEmbeddingStore（一次性懒加载包装）
type EmbeddingStore interface {
	// Get 读取物品向量，不存在时返回 ErrEmbeddingNotFound
	Get(ctx context.Context, id string) (Vector, error)

	// Entries 返回全部向量，按 ID 升序（保证遍历确定性）
	Entries(ctx context.Context) ([]Embedding, error)

	// Dimension 返回向量维度（空存储为 0）
	Dimension(ctx context.Context) (int, error)

	// Len 返回向量条数
	Len(ctx context.Context) (int, error)
}

// ItemCatalog 是物品目录的只读领域接口。
type ItemCatalog interface {
	// FindByID 按 ID 读取物品，不存在时返回 ErrItemNotFound
	FindByID(ctx context.Context, id string) (*Item, error)

	// FindAll 先按 filters 过滤，再按 ID 升序分页
	FindAll(ctx context.Context, filters *Filters, skip, limit int) ([]*Item, error)

	// Count 返回满足 filters 的物品数
	Count(ctx context.Context, filters *Filters) (int, error)
}

// CatalogLoader 从外部数据源读取整份目录（id -> Item）。
type CatalogLoader interface {
	LoadItems(ctx context.Context) (map[string]*Item, error)
}

// EmbeddingLoader 从外部数据源读取全部向量（id -> Vector）。
type EmbeddingLoader interface {
	LoadEmbeddings(ctx context.Context) (map[string]Vector, error)
}

// CatalogLoaderFunc 让普通函数实现 CatalogLoader。
type CatalogLoaderFunc func(ctx context.Context) (map[string]*Item, error)

func (f CatalogLoaderFunc) LoadItems(ctx context.Context) (map[string]*Item, error) {
	return f(ctx)
}

// EmbeddingLoaderFunc 让普通函数实现 EmbeddingLoader。
type EmbeddingLoaderFunc func(ctx context.Context) (map[string]Vector, error)

func (f EmbeddingLoaderFunc) LoadEmbeddings(ctx context.Context) (map[string]Vector, error) {
	return f(ctx)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrItemNotFound 表示目录中没有该物品
	ErrItemNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: item not found")

	// ErrEmbeddingNotFound 表示没有该物品的向量
	ErrEmbeddingNotFound = NewDomainError(ModuleEmbedding, ErrorCodeNotFound, "embedding: vector not found")
)
