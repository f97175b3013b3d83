package core

import "context"

// TextEmbedder 是文本向量化能力的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 引擎只依赖此接口，不关心具体是哪家模型服务
//
// 实现：
//   - service.OpenAIEmbedder（OpenAI 兼容的 /embeddings 接口，例如 LocalAI）
//   - service.CachedEmbedder（查询向量缓存包装）
type TextEmbedder interface {
	// Embed 把文本转换为向量，维度需与 EmbeddingStore 一致
	Embed(ctx context.Context, text string) (Vector, error)
}

// TextEmbedderFunc 让普通函数实现 TextEmbedder（测试常用）。
type TextEmbedderFunc func(ctx context.Context, text string) (Vector, error)

func (f TextEmbedderFunc) Embed(ctx context.Context, text string) (Vector, error) {
	return f(ctx, text)
}
