package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验字段范围与跨字段约束
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Scoring.TopN > c.Scoring.TopNLimit {
		return fmt.Errorf("scoring.default_top_n (%d) exceeds scoring.max_top_n (%d)", c.Scoring.TopN, c.Scoring.TopNLimit)
	}

	switch c.Source.Type {
	case "file":
		if c.Source.File.Path == "" {
			return errors.New("source.file.path is required for file source")
		}
	case "redis":
		if c.Source.Redis.Addr == "" || c.Source.Redis.ItemsKey == "" || c.Source.Redis.EmbeddingsKey == "" {
			return errors.New("source.redis.addr, items_key and embeddings_key are required for redis source")
		}
	case "postgres":
		if c.Source.Postgres.DSN == "" {
			return errors.New("source.postgres.dsn is required for postgres source")
		}
		if c.Source.Postgres.ItemsTable == "" || c.Source.Postgres.EmbeddingsTable == "" {
			return errors.New("source.postgres.items_table and embeddings_table are required")
		}
	}

	if c.Embedder.Type == "openai" && (c.Embedder.Endpoint == "" || c.Embedder.Model == "") {
		return errors.New("embedder.endpoint and embedder.model are required for openai embedder")
	}
	return nil
}
