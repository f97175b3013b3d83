package store

import (
	"context"
	"sort"

	"github.com/mbarek2002/car-plateform/core"
)

// MemoryCatalog 是内存中的物品目录快照。
// 构造后不可变，读取无锁。
type MemoryCatalog struct {
	items map[string]*core.Item
	ids   []string // 按 ID 升序，用于确定性分页
}

// NewMemoryCatalog 用 id -> item 构建目录。
// map 的 key 为准；item.ID 为空时补上 key。
func NewMemoryCatalog(items map[string]*core.Item) *MemoryCatalog {
	mc := &MemoryCatalog{
		items: make(map[string]*core.Item, len(items)),
		ids:   make([]string, 0, len(items)),
	}
	for id, it := range items {
		if it == nil {
			continue
		}
		if it.ID == "" {
			it.ID = id
		}
		mc.items[id] = it
		mc.ids = append(mc.ids, id)
	}
	sort.Strings(mc.ids)
	return mc
}

// FindByID 实现 core.ItemCatalog 接口
func (m *MemoryCatalog) FindByID(_ context.Context, id string) (*core.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, core.ErrItemNotFound
	}
	return it, nil
}

// FindAll 实现 core.ItemCatalog 接口。
// skip < 0 视为 0；limit <= 0 表示不限制。
func (m *MemoryCatalog) FindAll(_ context.Context, filters *core.Filters, skip, limit int) ([]*core.Item, error) {
	if skip < 0 {
		skip = 0
	}
	out := make([]*core.Item, 0)
	matched := 0
	for _, id := range m.ids {
		it := m.items[id]
		if !filters.Match(it) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Count 实现 core.ItemCatalog 接口
func (m *MemoryCatalog) Count(_ context.Context, filters *core.Filters) (int, error) {
	if filters.Empty() {
		return len(m.ids), nil
	}
	n := 0
	for _, id := range m.ids {
		if filters.Match(m.items[id]) {
			n++
		}
	}
	return n, nil
}

// Len 返回物品总数
func (m *MemoryCatalog) Len() int {
	return len(m.ids)
}

var _ core.ItemCatalog = (*MemoryCatalog)(nil)
