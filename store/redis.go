package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

// RedisLoader 从 Redis 读取快照，同时实现 core.CatalogLoader 和 core.EmbeddingLoader。
//
// 数据布局：
//   - ItemsKey：Hash，field 为物品 ID，value 为 Item 的 JSON
//   - EmbeddingsKey：Hash，field 为物品 ID，value 为 JSON 数组 [0.1, 0.2, ...]
type RedisLoader struct {
	client        redis.UniversalClient
	itemsKey      string
	embeddingsKey string
}

// NewRedisLoader 连接 Redis 并 Ping 一次。
func NewRedisLoader(ctx context.Context, addr, password string, db int, itemsKey, embeddingsKey string) (*RedisLoader, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisLoaderFromClient(client, itemsKey, embeddingsKey), nil
}

// NewRedisLoaderFromClient 复用已有客户端（单机、集群、哨兵均可）。
func NewRedisLoaderFromClient(client redis.UniversalClient, itemsKey, embeddingsKey string) *RedisLoader {
	return &RedisLoader{client: client, itemsKey: itemsKey, embeddingsKey: embeddingsKey}
}

func (r *RedisLoader) Name() string { return "redis" }

// LoadItems 实现 core.CatalogLoader。无法解析的条目跳过并记录警告。
func (r *RedisLoader) LoadItems(ctx context.Context) (map[string]*core.Item, error) {
	raw, err := r.client.HGetAll(ctx, r.itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.itemsKey, err)
	}
	log := logging.Ctx(ctx)
	out := make(map[string]*core.Item, len(raw))
	for id, val := range raw {
		var it core.Item
		if err := json.Unmarshal([]byte(val), &it); err != nil {
			log.Warn().Str("car_id", id).Err(err).Msg("skip redis item")
			continue
		}
		it.ID = id
		out[id] = &it
	}
	return out, nil
}

// LoadEmbeddings 实现 core.EmbeddingLoader。
func (r *RedisLoader) LoadEmbeddings(ctx context.Context) (map[string]core.Vector, error) {
	raw, err := r.client.HGetAll(ctx, r.embeddingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.embeddingsKey, err)
	}
	log := logging.Ctx(ctx)
	out := make(map[string]core.Vector, len(raw))
	for id, val := range raw {
		var vec core.Vector
		if err := json.Unmarshal([]byte(val), &vec); err != nil || len(vec) == 0 {
			log.Warn().Str("car_id", id).Err(err).Msg("skip redis embedding")
			continue
		}
		out[id] = vec
	}
	return out, nil
}

// Close 关闭底层连接。
func (r *RedisLoader) Close() error {
	return r.client.Close()
}

var (
	_ core.CatalogLoader   = (*RedisLoader)(nil)
	_ core.EmbeddingLoader = (*RedisLoader)(nil)
)
