package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
	"github.com/mbarek2002/car-plateform/pkg/conv"
)

// snapshotFile 是向量快照文件的格式：
//
//	{"embeddings": {"<id>": {"embedding": [...], "metadata": {"id": ..., "price": ..., ...}}}}
//
// .yaml/.yml 文件使用同样的结构。
type snapshotFile struct {
	Embeddings map[string]snapshotRecord `json:"embeddings" yaml:"embeddings"`
}

type snapshotRecord struct {
	Embedding core.Vector    `json:"embedding" yaml:"embedding"`
	Metadata  map[string]any `json:"metadata" yaml:"metadata"`
}

// FileLoader 从本地快照文件读取目录与向量，同时实现 core.CatalogLoader 和 core.EmbeddingLoader。
// 文件的修改时间与大小都未变时复用上次的解析结果，目录与向量两次加载只解析一次；
// 文件变化后下一次 Load 重新解析，便于 Refresh。
type FileLoader struct {
	path string

	mu      sync.Mutex
	doc     *snapshotFile
	modTime time.Time
	size    int64
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (f *FileLoader) read(ctx context.Context) (*snapshotFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc != nil && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return f.doc, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	var doc snapshotFile
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}

	f.doc = &doc
	f.modTime = info.ModTime()
	f.size = info.Size()
	return f.doc, nil
}

// LoadEmbeddings 实现 core.EmbeddingLoader。
// 物品 ID 取 metadata.id，缺失时用记录的 key；空向量跳过。
func (f *FileLoader) LoadEmbeddings(ctx context.Context) (map[string]core.Vector, error) {
	doc, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Vector, len(doc.Embeddings))
	for key, rec := range doc.Embeddings {
		if len(rec.Embedding) == 0 {
			continue
		}
		out[recordID(key, rec.Metadata)] = rec.Embedding
	}
	return out, nil
}

// LoadItems 实现 core.CatalogLoader。
// 缺少必填字段（price/year/manufacturer/model）的记录会被跳过并记录警告。
func (f *FileLoader) LoadItems(ctx context.Context) (map[string]*core.Item, error) {
	doc, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	log := logging.Ctx(ctx)
	out := make(map[string]*core.Item, len(doc.Embeddings))
	skipped := 0
	for key, rec := range doc.Embeddings {
		id := recordID(key, rec.Metadata)
		it, err := ItemFromMetadata(id, rec.Metadata)
		if err != nil {
			skipped++
			log.Warn().Str("car_id", id).Err(err).Msg("skip snapshot record")
			continue
		}
		out[id] = it
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(out)).Str("path", f.path).Msg("snapshot records skipped")
	}
	return out, nil
}

func recordID(key string, meta map[string]any) string {
	if id, ok := conv.ToString(meta["id"]); ok {
		return id
	}
	return key
}

// ItemFromMetadata 把快照元数据转成 Item。
//
// 规则：
//   - price、year、manufacturer、model 必填
//   - odometer 缺失或为 0 视为未知
//   - lat/long 都存在且非 0 时才有位置
func ItemFromMetadata(id string, meta map[string]any) (*core.Item, error) {
	if meta == nil {
		return nil, fmt.Errorf("missing metadata")
	}

	price, ok := conv.ToFloat64(meta["price"])
	if !ok {
		return nil, fmt.Errorf("invalid price %v", meta["price"])
	}
	year, ok := conv.ToInt(meta["year"])
	if !ok {
		return nil, fmt.Errorf("invalid year %v", meta["year"])
	}
	manufacturer, ok := conv.ToString(meta["manufacturer"])
	if !ok {
		return nil, fmt.Errorf("missing manufacturer")
	}
	model, ok := conv.ToString(meta["model"])
	if !ok {
		return nil, fmt.Errorf("missing model")
	}

	it := &core.Item{
		ID:           id,
		Price:        price,
		Year:         year,
		Manufacturer: manufacturer,
		Model:        model,
		Condition:    str(meta, "condition"),
		Cylinders:    str(meta, "cylinders"),
		Fuel:         str(meta, "fuel"),
		TitleStatus:  str(meta, "title_status"),
		Transmission: str(meta, "transmission"),
		Drive:        str(meta, "drive"),
		Size:         str(meta, "size"),
		Type:         str(meta, "type"),
		PaintColor:   str(meta, "paint_color"),
		State:        str(meta, "state"),
		Region:       str(meta, "region"),
		VIN:          str(meta, "vin"),
		URL:          str(meta, "url"),
		ImageURL:     str(meta, "image_url"),
		Description:  str(meta, "description"),
	}

	if conv.Truthy(meta["odometer"]) {
		if odo, ok := conv.ToFloat64(meta["odometer"]); ok {
			it.Odometer = &odo
		}
	}
	if conv.Truthy(meta["lat"]) && conv.Truthy(meta["long"]) {
		lat, okLat := conv.ToFloat64(meta["lat"])
		lon, okLon := conv.ToFloat64(meta["long"])
		loc := core.Location{Latitude: lat, Longitude: lon}
		if okLat && okLon && loc.Valid() {
			it.Location = &loc
		}
	}
	return it, nil
}

func str(meta map[string]any, key string) string {
	s, _ := conv.ToString(meta[key])
	return s
}

var (
	_ core.CatalogLoader   = (*FileLoader)(nil)
	_ core.EmbeddingLoader = (*FileLoader)(nil)
)
