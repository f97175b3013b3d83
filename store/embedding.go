package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/mbarek2002/car-plateform/core"
)

// MemoryEmbeddingStore 是内存中的向量快照。
//
// 特点：
//   - 构造后不可变，读取无锁，可并发访问
//   - 所有向量维度一致，构造时校验
//   - Entries 按 ID 升序返回，遍历结果确定
type MemoryEmbeddingStore struct {
	dimension int
	entries   []core.Embedding // 按 ID 升序
	index     map[string]int   // item ID -> entries 下标
}

// NewMemoryEmbeddingStore 用 id -> vector 构建快照。
// 维度不一致或出现空向量时返回 INTERNAL_ERROR 错误。
func NewMemoryEmbeddingStore(vectors map[string]core.Vector) (*MemoryEmbeddingStore, error) {
	ids := make([]string, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	m := &MemoryEmbeddingStore{
		entries: make([]core.Embedding, 0, len(ids)),
		index:   make(map[string]int, len(ids)),
	}

	for _, id := range ids {
		vec := vectors[id]
		if len(vec) == 0 {
			return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInternalError,
				fmt.Sprintf("empty vector for item %q", id))
		}
		if m.dimension == 0 {
			m.dimension = len(vec)
		} else if len(vec) != m.dimension {
			return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInternalError,
				fmt.Sprintf("vector dimension mismatch for item %q: %d != %d", id, len(vec), m.dimension))
		}
		m.index[id] = len(m.entries)
		m.entries = append(m.entries, core.Embedding{ID: id, Vector: vec})
	}

	return m, nil
}

// Get 实现 core.EmbeddingStore 接口
func (m *MemoryEmbeddingStore) Get(_ context.Context, id string) (core.Vector, error) {
	i, ok := m.index[id]
	if !ok {
		return nil, core.ErrEmbeddingNotFound
	}
	return m.entries[i].Vector, nil
}

// Entries 实现 core.EmbeddingStore 接口。返回的切片为只读共享数据。
func (m *MemoryEmbeddingStore) Entries(_ context.Context) ([]core.Embedding, error) {
	return m.entries, nil
}

func (m *MemoryEmbeddingStore) Dimension(_ context.Context) (int, error) {
	return m.dimension, nil
}

func (m *MemoryEmbeddingStore) Len(_ context.Context) (int, error) {
	return len(m.entries), nil
}

// 确保实现了接口
var _ core.EmbeddingStore = (*MemoryEmbeddingStore)(nil)
