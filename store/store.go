package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.EmbeddingStore、core.ItemCatalog、core.CatalogLoader、core.EmbeddingLoader 接口。
//
// 示例：
//
//	loader := store.NewFileLoader("data/cars_embeddings.json")
//	catalog := store.NewLazyCatalog(loader)
//	embeddings := store.NewLazyEmbeddingStore(loader)
//	if err := store.Warm(ctx, catalog, embeddings); err != nil { ... }
