package filter

import (
	"context"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/pipeline"
	"github.com/mbarek2002/car-plateform/scoring"
)

// CatalogNode 为候选补全物品信息并计算到用户的距离。
// 目录中不存在的候选被丢弃（向量与目录可能不同步）；其他读取错误中断请求。
type CatalogNode struct {
	Catalog core.ItemCatalog
}

func (n *CatalogNode) Name() string        { return "filter.catalog" }
func (n *CatalogNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *CatalogNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	var user *core.Location
	if rctx != nil {
		user = rctx.UserLocation
	}

	log := logging.Ctx(ctx)
	out := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		it, err := n.Catalog.FindByID(ctx, c.ID)
		if err != nil {
			if core.IsNotFound(err) {
				log.Debug().Str("car_id", c.ID).Msg("candidate missing from catalog, skipped")
				continue
			}
			return nil, err
		}
		c.Item = it
		c.DistanceKm = scoring.DistanceBetween(user, it)
		out = append(out, c)
	}
	return out, nil
}
