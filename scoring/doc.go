// Package scoring 提供推荐打分用的纯函数：余弦相似度归一化、地理距离分数、加权总分。
//
// 所有函数无共享状态，只依赖静态配置（默认权重、最大距离），可并发调用。
//
//	svc := scoring.NewService(&core.DefaultScoringConfig{})
//	sim, _ := scoring.Similarity(a, b)             // [0,1]
//	km := scoring.DistanceKm(userLoc, *item.Location)
//	final := svc.FinalScore(sim, svc.DistanceScore(km), svc.ResolveWeights(nil, nil))
package scoring
