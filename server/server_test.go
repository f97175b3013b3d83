package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/recommend"
	"github.com/mbarek2002/car-plateform/scoring"
	"github.com/mbarek2002/car-plateform/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	emb, err := store.NewMemoryEmbeddingStore(map[string]core.Vector{
		"A": {1, 0},
		"B": {1, 0},
		"C": {0, 1},
		"D": {0.9, 0.1},
	})
	if err != nil {
		t.Fatal(err)
	}
	catalog := store.NewMemoryCatalog(map[string]*core.Item{
		"A": {Manufacturer: "toyota", Model: "a", Price: 10000, Year: 2015},
		"B": {Manufacturer: "toyota", Model: "b", Price: 12000, Year: 2016,
			Location: &core.Location{Latitude: 34.05, Longitude: -118.24}},
		"C": {Manufacturer: "ford", Model: "c", Price: 25000, Year: 2019},
		"D": {Manufacturer: "honda", Model: "d", Price: 15000, Year: 2014,
			Location: &core.Location{Latitude: 40.71, Longitude: -74.0}},
	})
	embedder := core.TextEmbedderFunc(func(context.Context, string) (core.Vector, error) {
		return core.Vector{0, 1}, nil
	})
	engine := recommend.NewEngine(emb, catalog, scoring.NewService(nil), recommend.WithEmbedder(embedder))
	return New(nil, engine, catalog, WithReadinessChecks(
		ReadinessCheck{Name: "catalog", Ready: func() bool { return true }},
	))
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type recsBody struct {
	Recommendations []struct {
		Car struct {
			ID string `json:"car_id"`
		} `json:"car"`
		FinalScore float64  `json:"final_score"`
		DistanceKm *float64 `json:"distance_km"`
		Rank       int      `json:"rank"`
	} `json:"recommendations"`
	Total int `json:"total"`
	Query struct {
		Mode string `json:"mode"`
		TopN int    `json:"top_n"`
	} `json:"query"`
}

func (b recsBody) ids() []string {
	out := make([]string, 0, len(b.Recommendations))
	for _, r := range b.Recommendations {
		out = append(out, r.Car.ID)
	}
	return out
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestRecommendByID(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/recommendations/by-id", `{"car_id":"A","top_n":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	body := decode[recsBody](t, rec)
	if got := strings.Join(body.ids(), ","); got != "B,D" {
		t.Errorf("ids = %s, want B,D", got)
	}
	if body.Total != 2 || body.Query.Mode != "by_id" || body.Query.TopN != 2 {
		t.Errorf("body = %+v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRecommendByID_UserLocation(t *testing.T) {
	s := newTestServer(t)

	// 只给纬度不使用位置
	rec := do(t, s, http.MethodPost, "/v1/recommendations/by-id",
		`{"car_id":"A","top_n":3,"user_latitude":40.7}`)
	body := decode[recsBody](t, rec)
	for _, r := range body.Recommendations {
		if r.DistanceKm != nil {
			t.Errorf("%s: distance_km = %v without full location", r.Car.ID, *r.DistanceKm)
		}
	}

	rec = do(t, s, http.MethodPost, "/v1/recommendations/by-id",
		`{"car_id":"A","top_n":3,"user_latitude":40.7,"user_longitude":-74.0}`)
	body = decode[recsBody](t, rec)
	if got := strings.Join(body.ids(), ","); got != "D,B,C" {
		t.Errorf("ids = %s, want D,B,C", got)
	}
}

func TestRecommendByText(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/recommendations/by-text", `{"query":"ford","top_n":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	body := decode[recsBody](t, rec)
	if got := strings.Join(body.ids(), ","); got != "C,D" {
		t.Errorf("ids = %s, want C,D", got)
	}
}

func TestRecommend_Errors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown car", "/v1/recommendations/by-id", `{"car_id":"Z"}`, http.StatusNotFound, core.ErrorCodeNotFound},
		{"missing car id", "/v1/recommendations/by-id", `{}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"top_n too large", "/v1/recommendations/by-id", `{"car_id":"A","top_n":101}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"top_n zero", "/v1/recommendations/by-id", `{"car_id":"A","top_n":0}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"weight out of range", "/v1/recommendations/by-id", `{"car_id":"A","similarity_weight":1.5}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"bad latitude", "/v1/recommendations/by-id", `{"car_id":"A","user_latitude":91,"user_longitude":0}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"malformed json", "/v1/recommendations/by-id", `{"car_id":`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"bad expression", "/v1/recommendations/by-id", `{"car_id":"A","expression":"item.price >"}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{"empty query", "/v1/recommendations/by-text", `{"query":""}`, http.StatusBadRequest, core.ErrorCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.wantCode, rec.Body)
			}
			body := decode[ErrorBody](t, rec)
			if body.Error.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantErr)
			}
		})
	}
}

type fakeRecommender struct{ err error }

func (f fakeRecommender) RecommendByItemID(context.Context, recommend.Request) (*recommend.Response, error) {
	return nil, f.err
}

func (f fakeRecommender) RecommendByText(context.Context, recommend.Request) (*recommend.Response, error) {
	return nil, f.err
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"unavailable", core.NewDomainError(core.ModuleEmbedder, core.ErrorCodeUnavailable, "embedder down"),
			http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"internal hides detail", core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "boom", errors.New("secret")),
			http.StatusInternalServerError, "internal error"},
		{"plain error", errors.New("secret"), http.StatusInternalServerError, "internal error"},
		{"deadline", core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "slow", context.DeadlineExceeded),
			http.StatusServiceUnavailable, "request timed out"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "request canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, fakeRecommender{err: tt.err}, store.NewMemoryCatalog(nil))
			rec := do(t, s, http.MethodPost, "/v1/recommendations/by-text", `{"query":"x"}`)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decode[ErrorBody](t, rec)
			if body.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestRecommendByID_CorruptSnapshot(t *testing.T) {
	emb := store.NewLazyEmbeddingStore(core.EmbeddingLoaderFunc(func(context.Context) (map[string]core.Vector, error) {
		return map[string]core.Vector{"A": {1, 0}, "B": {1, 0, 0}}, nil
	}))
	catalog := store.NewMemoryCatalog(map[string]*core.Item{"A": {}, "B": {}})
	s := New(nil, recommend.NewEngine(emb, catalog, nil), catalog)

	rec := do(t, s, http.MethodPost, "/v1/recommendations/by-id", `{"car_id":"A"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode[ErrorBody](t, rec)
	if body.Error.Code != core.ErrorCodeInternalError || body.Error.Message != "internal error" {
		t.Errorf("error = %+v", body.Error)
	}
	if strings.Contains(rec.Body.String(), "dimension") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestGetCar(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/cars/C", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	item := decode[core.Item](t, rec)
	if item.ID != "C" || item.Manufacturer != "ford" {
		t.Errorf("item = %+v", item)
	}

	if rec := do(t, s, http.MethodGet, "/v1/cars/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing car status = %d", rec.Code)
	}
}

func TestListCars(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantIDs   string
		wantTotal string
	}{
		{"default", "", http.StatusOK, "A,B,C,D", "4"},
		{"paged", "?skip=1&limit=2", http.StatusOK, "B,C", "4"},
		{"manufacturer", "?manufacturer=toyota", http.StatusOK, "A,B", "2"},
		{"price range", "?min_price=11000&max_price=20000", http.StatusOK, "B,D", "2"},
		{"skip past end", "?skip=10", http.StatusOK, "", "4"},
		{"limit too large", "?limit=101", http.StatusBadRequest, "", ""},
		{"limit zero", "?limit=0", http.StatusBadRequest, "", ""},
		{"negative skip", "?skip=-1", http.StatusBadRequest, "", ""},
		{"bad price", "?min_price=cheap", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/v1/cars"+tt.query, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tt.wantCode, rec.Body)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			items := decode[[]core.Item](t, rec)
			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.ID)
			}
			if strings.Join(got, ",") != tt.wantIDs {
				t.Errorf("ids = %v, want %s", got, tt.wantIDs)
			}
			if h := rec.Header().Get(TotalCountHeader); h != tt.wantTotal {
				t.Errorf("%s = %q, want %q", TotalCountHeader, h, tt.wantTotal)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/v1/recommendations/health", "")
	body := decode[HealthResponse](t, rec)
	if body.Status != "healthy" || !body.Checks["catalog"] {
		t.Errorf("health = %+v", body)
	}

	degraded := New(nil, fakeRecommender{}, store.NewMemoryCatalog(nil), WithReadinessChecks(
		ReadinessCheck{Name: "embeddings", Ready: func() bool { return false }},
	))
	body = decode[HealthResponse](t, do(t, degraded, http.MethodGet, "/v1/recommendations/health", ""))
	if body.Status != "degraded" || body.Checks["embeddings"] {
		t.Errorf("degraded health = %+v", body)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/health", "")
	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "carreco_api_requests_total") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
