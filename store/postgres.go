package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

// PostgresLoader 从 PostgreSQL 读取快照。
//
// 表结构：
//
//	CREATE TABLE cars (car_id TEXT PRIMARY KEY, data JSONB NOT NULL);
//	CREATE TABLE car_embeddings (car_id TEXT PRIMARY KEY, embedding REAL[] NOT NULL);
//
// data 是 Item 的 JSON。表名可配置。
type PostgresLoader struct {
	pool            *pgxpool.Pool
	itemsTable      string
	embeddingsTable string
}

// NewPostgresLoader 建立连接池并 Ping 一次。
func NewPostgresLoader(ctx context.Context, dsn, itemsTable, embeddingsTable string) (*PostgresLoader, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresLoader{
		pool:            pool,
		itemsTable:      itemsTable,
		embeddingsTable: embeddingsTable,
	}, nil
}

func (p *PostgresLoader) Name() string { return "postgres" }

// LoadItems 实现 core.CatalogLoader。
func (p *PostgresLoader) LoadItems(ctx context.Context) (map[string]*core.Item, error) {
	query := fmt.Sprintf("SELECT car_id, data FROM %s", pgx.Identifier{p.itemsTable}.Sanitize())
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.itemsTable, err)
	}
	defer rows.Close()

	log := logging.Ctx(ctx)
	out := make(map[string]*core.Item)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.itemsTable, err)
		}
		var it core.Item
		if err := json.Unmarshal(data, &it); err != nil {
			log.Warn().Str("car_id", id).Err(err).Msg("skip postgres item")
			continue
		}
		it.ID = id
		out[id] = &it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", p.itemsTable, err)
	}
	return out, nil
}

// LoadEmbeddings 实现 core.EmbeddingLoader。
func (p *PostgresLoader) LoadEmbeddings(ctx context.Context) (map[string]core.Vector, error) {
	query := fmt.Sprintf("SELECT car_id, embedding FROM %s", pgx.Identifier{p.embeddingsTable}.Sanitize())
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.embeddingsTable, err)
	}
	defer rows.Close()

	out := make(map[string]core.Vector)
	for rows.Next() {
		var (
			id  string
			vec []float32
		)
		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.embeddingsTable, err)
		}
		if len(vec) == 0 {
			continue
		}
		out[id] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", p.embeddingsTable, err)
	}
	return out, nil
}

func (p *PostgresLoader) Close() {
	p.pool.Close()
}

var (
	_ core.CatalogLoader   = (*PostgresLoader)(nil)
	_ core.EmbeddingLoader = (*PostgresLoader)(nil)
)
