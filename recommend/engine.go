// Package recommend 实现混合推荐引擎：向量相似度召回 + 属性过滤 + 距离加权排序。
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/filter"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/rank"
	"github.com/mbarek2002/car-plateform/recall"
	"github.com/mbarek2002/car-plateform/rerank"
	"github.com/mbarek2002/car-plateform/scoring"
)

// Observer 接收引擎的观测数据（可选），metrics 包提供 Prometheus 实现。
type Observer interface {
	ObserveRequest(mode core.Mode, outcome string, took time.Duration, results int)
	ObserveWindow(mode core.Mode, size int)
}

// 请求结果分类，用于观测
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeInternal    = "internal"
	OutcomeTimeout     = "timeout"
	OutcomeCanceled    = "canceled"
)

// Engine 是推荐引擎。所有依赖在构造时注入，Engine 本身无状态，可并发使用。
type Engine struct {
	embeddings core.EmbeddingStore
	catalog    core.ItemCatalog
	scoring    *scoring.Service

	embedder core.TextEmbedder
	exclude  *filter.ExcludeFilter
	workers  int
	observer Observer
}

// Option 配置 Engine
type Option func(*Engine)

// WithEmbedder 设置文本向量化能力，RecommendByText 需要。
func WithEmbedder(embedder core.TextEmbedder) Option {
	return func(e *Engine) { e.embedder = embedder }
}

// WithExcludedIDs 设置全局排除的物品（如已下架车源）。
func WithExcludedIDs(ids []string) Option {
	return func(e *Engine) { e.exclude = filter.NewExcludeFilter(ids) }
}

// WithWorkers 设置相似度计算的并发分片数。
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine 创建推荐引擎；svc 为 nil 时使用默认打分配置。
func NewEngine(embeddings core.EmbeddingStore, catalog core.ItemCatalog, svc *scoring.Service, opts ...Option) *Engine {
	if svc == nil {
		svc = scoring.NewService(nil)
	}
	e := &Engine{
		embeddings: embeddings,
		catalog:    catalog,
		scoring:    svc,
		exclude:    filter.NewExcludeFilter(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecommendByItemID 推荐与参考物品相似的物品，参考物品自身不会出现在结果中。
// 参考物品没有向量时返回 NOT_FOUND。
func (e *Engine) RecommendByItemID(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := e.recommendByItemID(ctx, req)
	return e.finish(ctx, core.ModeByID, start, resp, err)
}

func (e *Engine) recommendByItemID(ctx context.Context, req Request) (*Response, error) {
	id := strings.TrimSpace(req.ItemID)
	if id == "" {
		return nil, invalid("car_id is required")
	}
	rctx, err := e.newContext(core.ModeByID, req)
	if err != nil {
		return nil, err
	}

	vec, err := e.embeddings.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
				fmt.Sprintf("car %s not found in embeddings", id), err)
		}
		return nil, err
	}
	rctx.ReferenceID = id
	rctx.QueryVector = vec
	return e.run(ctx, rctx)
}

// RecommendByText 推荐与自由文本查询相似的物品。
// 文本为空时返回 INVALID_INPUT。
func (e *Engine) RecommendByText(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := e.recommendByText(ctx, req)
	return e.finish(ctx, core.ModeByText, start, resp, err)
}

func (e *Engine) recommendByText(ctx context.Context, req Request) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, invalid("query text must not be empty")
	}
	if e.embedder == nil {
		return nil, core.NewDomainError(core.ModuleEmbedder, core.ErrorCodeUnavailable, "text embedder not configured")
	}
	rctx, err := e.newContext(core.ModeByText, req)
	if err != nil {
		return nil, err
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, core.NewDomainError(core.ModuleEmbedder, core.ErrorCodeInternalError, "embedder returned an empty vector")
	}
	rctx.QueryText = text
	rctx.QueryVector = vec
	return e.run(ctx, rctx)
}

// newContext 校验参数并补全默认值。
func (e *Engine) newContext(mode core.Mode, req Request) (*core.RecommendContext, error) {
	cfg := e.scoring.Config()

	topN := req.TopN
	if topN <= 0 {
		topN = cfg.DefaultTopN()
	}
	if topN > cfg.MaxTopN() {
		topN = cfg.MaxTopN()
	}

	w := e.scoring.ResolveWeights(req.SimilarityWeight, req.DistanceWeight)
	if w.Similarity < 0 || w.Similarity > 1 {
		return nil, invalid(fmt.Sprintf("similarity_weight must be in [0,1], got %v", w.Similarity))
	}
	if w.Distance < 0 || w.Distance > 1 {
		return nil, invalid(fmt.Sprintf("distance_weight must be in [0,1], got %v", w.Distance))
	}

	if req.MaxPerManufacturer < 0 {
		return nil, invalid(fmt.Sprintf("max_per_manufacturer must be >= 0, got %d", req.MaxPerManufacturer))
	}

	if req.UserLocation != nil && !req.UserLocation.Valid() {
		return nil, invalid(fmt.Sprintf("user location out of range: %+v", *req.UserLocation))
	}

	return &core.RecommendContext{
		Mode:             mode,
		TopN:             topN,
		UserLocation:     req.UserLocation,
		Filters:          req.Filters,
		SimilarityWeight: w.Similarity,
		DistanceWeight:   w.Distance,
		ExcludeIDs:       req.ExcludeIDs,

		MaxPerManufacturer: req.MaxPerManufacturer,
	}, nil
}

// buildPipeline 按请求组装 Node 链。表达式在这里编译一次。
func (e *Engine) buildPipeline(rctx *core.RecommendContext) (*pipeline.Pipeline, error) {
	cfg := e.scoring.Config()

	filters := []filter.Filter{e.exclude}
	if rctx.Filters != nil {
		filters = append(filters, filter.AttributeFilter{})
		if expr := strings.TrimSpace(rctx.Filters.Expression); expr != "" {
			f, err := filter.NewExprFilter(expr)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
	}

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.SimilarityNode{
				Store:      e.embeddings,
				Threshold:  cfg.SimilarityThreshold(),
				Oversample: cfg.OversampleFactor(),
				Workers:    e.workers,
			},
			&filter.CatalogNode{Catalog: e.catalog},
			&filter.FilterNode{Filters: filters},
			&rerank.DiversityNode{Key: "manufacturer", MaxPerKey: rctx.MaxPerManufacturer},
			&rerank.TopNNode{N: rctx.TopN},
			&rank.HybridNode{Scoring: e.scoring},
			rerank.DenseRankNode{},
		},
	}
	if e.observer != nil {
		p.Observe = func(node pipeline.Node, _, out int, _ time.Duration) {
			if node.Kind() == pipeline.KindRecall {
				e.observer.ObserveWindow(rctx.Mode, out)
			}
		}
	}
	return p, nil
}

func (e *Engine) run(ctx context.Context, rctx *core.RecommendContext) (*Response, error) {
	p, err := e.buildPipeline(rctx)
	if err != nil {
		return nil, err
	}

	candidates, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	recs := make([]core.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recs = append(recs, c.ToRecommendation())
	}

	return &Response{
		Recommendations: recs,
		Total:           len(recs),
		Query: QueryInfo{
			Mode:         rctx.Mode,
			ReferenceID:  rctx.ReferenceID,
			Text:         rctx.QueryText,
			TopN:         rctx.TopN,
			Weights:      scoring.Weights{Similarity: rctx.SimilarityWeight, Distance: rctx.DistanceWeight},
			UserLocation: rctx.UserLocation,
			Filters:      rctx.Filters,

			MaxPerManufacturer: rctx.MaxPerManufacturer,
		},
	}, nil
}

// finish 统一错误分类、日志与观测。
// NOT_FOUND / INVALID_INPUT / UNAVAILABLE 原样返回；
// 请求超时或取消原样返回（errors.Is 可识别），单独计数；其余包装为 INTERNAL_ERROR。
func (e *Engine) finish(ctx context.Context, mode core.Mode, start time.Time, resp *Response, err error) (*Response, error) {
	took := time.Since(start)
	log := logging.Ctx(ctx)

	outcome := OutcomeOK
	switch {
	case err == nil:
	case core.IsNotFound(err):
		outcome = OutcomeNotFound
	case core.IsInvalidInput(err):
		outcome = OutcomeInvalid
	case core.IsUnavailable(err):
		outcome = OutcomeUnavailable
		log.Warn().Err(err).Str("mode", string(mode)).Msg("recommendation dependency unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeTimeout
		log.Warn().Err(err).Str("mode", string(mode)).Dur("took", took).Msg("recommendation timed out")
	case errors.Is(err, context.Canceled):
		outcome = OutcomeCanceled
		log.Info().Err(err).Str("mode", string(mode)).Dur("took", took).Msg("recommendation canceled")
	default:
		outcome = OutcomeInternal
		log.Error().Err(err).Str("mode", string(mode)).Dur("took", took).Msg("recommendation failed")
		if !core.IsInternal(err) {
			err = core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "recommendation failed", err)
		}
	}

	results := 0
	if resp != nil {
		results = resp.Total
	}
	if e.observer != nil {
		e.observer.ObserveRequest(mode, outcome, took, results)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("mode", string(mode)).Int("results", results).Dur("took", took).Msg("recommendation served")
	return resp, nil
}

func invalid(msg string) error {
	return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, msg)
}
