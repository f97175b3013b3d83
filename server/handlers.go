package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/pkg/conv"
	"github.com/mbarek2002/car-plateform/recommend"
)

// maxBodyBytes 限制请求体大小
const maxBodyBytes = 1 << 20

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// TotalCountHeader 是列表接口返回总数的响应头
const TotalCountHeader = "X-Total-Count"

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// recommendationsHealth 汇报快照与依赖状态；任一检查未就绪时为 degraded，仍返回 200。
func (s *Server) recommendationsHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "healthy", Service: "recommendations"}
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]bool, len(s.checks))
		for _, c := range s.checks {
			ok := c.Ready()
			resp.Checks[c.Name] = ok
			if !ok {
				resp.Status = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recommendByID(w http.ResponseWriter, r *http.Request) {
	var body RecommendByIDRequest
	if err := decodeAndValidate(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	req := body.toRequest()
	req.ItemID = strings.TrimSpace(body.CarID)
	s.recommend(w, r, s.engine.RecommendByItemID, req)
}

func (s *Server) recommendByText(w http.ResponseWriter, r *http.Request) {
	var body RecommendByTextRequest
	if err := decodeAndValidate(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	req := body.toRequest()
	req.Text = body.Query
	s.recommend(w, r, s.engine.RecommendByText, req)
}

type recommendFunc func(ctx context.Context, req recommend.Request) (*recommend.Response, error)

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, fn recommendFunc, req recommend.Request) {
	resp, err := fn(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCar(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "carID"))
	if id == "" {
		writeError(r.Context(), w, invalidInput("car id is required"))
		return
	}
	item, err := s.catalog.FindByID(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// listCars: GET /v1/cars?skip&limit&manufacturer&min_price&max_price
func (s *Server) listCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), 0)
	if err != nil || skip < 0 {
		writeError(r.Context(), w, invalidInput("skip must be a non-negative integer"))
		return
	}
	limit, err := intParam(q.Get("limit"), defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(r.Context(), w, invalidInput(fmt.Sprintf("limit must be between 1 and %d", maxListLimit)))
		return
	}

	filters := &core.Filters{}
	if m := strings.TrimSpace(q.Get("manufacturer")); m != "" {
		filters.Manufacturers = []string{m}
	}
	if filters.MinPrice, err = floatParam(q.Get("min_price")); err != nil {
		writeError(r.Context(), w, invalidInput("min_price must be a number"))
		return
	}
	if filters.MaxPrice, err = floatParam(q.Get("max_price")); err != nil {
		writeError(r.Context(), w, invalidInput("max_price must be a number"))
		return
	}

	items, err := s.catalog.FindAll(r.Context(), filters, skip, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	total, err := s.catalog.Count(r.Context(), filters)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if items == nil {
		items = []*core.Item{}
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	writeJSON(w, http.StatusOK, items)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return invalidInput("request body too large")
		}
		return core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "malformed JSON body", err)
	}
	return validate.Struct(dst)
}

func invalidInput(msg string) error {
	return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, msg)
}

var errBadParam = errors.New("bad query parameter")

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, ok := conv.ToInt(raw)
	if !ok {
		return 0, errBadParam
	}
	return v, nil
}

func floatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := conv.ToFloat64(raw)
	if !ok {
		return nil, errBadParam
	}
	return &v, nil
}
