package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mbarek2002/car-plateform/core"
)

// CachedEmbedder 是带内存缓存的 TextEmbedder，采用 TTL + LRU 策略。
// 相同的查询文本（忽略首尾空白）在 TTL 内只请求一次远程向量化服务；错误不缓存。
type CachedEmbedder struct {
	next core.TextEmbedder

	mu              sync.Mutex
	entries         map[string]*cacheEntry
	maxSize         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	cleanupTicker   *time.Ticker
	stopCleanup     chan struct{}
	stopOnce        sync.Once

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	vector     core.Vector
	expireTime time.Time
	accessTime time.Time
}

// NewCachedEmbedder 包装 next；maxSize <= 0 或 ttl <= 0 时直接返回 next。
func NewCachedEmbedder(next core.TextEmbedder, maxSize int, ttl time.Duration) core.TextEmbedder {
	if next == nil || maxSize <= 0 || ttl <= 0 {
		return next
	}
	c := &CachedEmbedder{
		next:            next,
		entries:         make(map[string]*cacheEntry, maxSize),
		maxSize:         maxSize,
		defaultTTL:      ttl,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	// 启动清理协程
	c.cleanupTicker = time.NewTicker(c.cleanupInterval)
	go c.cleanup()

	return c
}

func (c *CachedEmbedder) cleanup() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.cleanExpired()
		case <-c.stopCleanup:
			c.cleanupTicker.Stop()
			return
		}
	}
}

func (c *CachedEmbedder) cleanExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.After(entry.expireTime) {
			delete(c.entries, key)
		}
	}
	for len(c.entries) > c.maxSize {
		c.evictLRU()
	}
}

// evictLRU 删除最久未访问的条目，调用方持有 mu。
func (c *CachedEmbedder) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.accessTime.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.accessTime
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *CachedEmbedder) get(key string) (core.Vector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expireTime) {
		c.misses++
		return nil, false
	}
	entry.accessTime = time.Now()
	c.hits++
	return entry.vector, true
}

func (c *CachedEmbedder) set(key string, vec core.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}
	now := time.Now()
	c.entries[key] = &cacheEntry{
		vector:     vec,
		expireTime: now.Add(c.defaultTTL),
		accessTime: now,
	}
}

// Embed 先查缓存，未命中再调用下游。返回的向量由调用方只读使用。
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (core.Vector, error) {
	key := strings.TrimSpace(text)
	if vec, ok := c.get(key); ok {
		return vec, nil
	}
	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.set(key, vec)
	return vec, nil
}

// Stats 返回命中数、未命中数与当前条目数
func (c *CachedEmbedder) Stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Close 停止清理协程，可重复调用。
func (c *CachedEmbedder) Close() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
