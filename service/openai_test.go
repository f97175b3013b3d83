package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mbarek2002/car-plateform/core"
)

const embeddingResponse = `{
  "object": "list",
  "data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1.0]}],
  "model": "test-embed",
  "usage": {"prompt_tokens": 3, "total_tokens": 3}
}`

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, embeddingResponse)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL+"/v1", "test-embed", WithOpenAIKey("sk-test"))
	vec, err := e.Embed(context.Background(), "red pickup truck")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.25 || vec[1] != -0.5 {
		t.Errorf("vec = %v", vec)
	}
	if !strings.Contains(gotBody, "red pickup truck") || !strings.Contains(gotBody, "test-embed") {
		t.Errorf("request body = %s", gotBody)
	}
}

func TestOpenAIEmbedder_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[],"model":"m"}`)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL, "m")
	_, err := e.Embed(context.Background(), "x")
	if !core.IsInternal(err) {
		t.Errorf("err = %v, want INTERNAL_ERROR", err)
	}
}

func TestOpenAIEmbedder_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	var opened atomic.Bool
	e := NewOpenAIEmbedder(srv.URL, "m",
		WithOpenAIBreaker(BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}),
		WithOpenAIStateListener(func(_ string, _, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				opened.Store(true)
			}
		}),
	)

	for i := 0; i < 2; i++ {
		if _, err := e.Embed(context.Background(), "x"); !core.IsUnavailable(err) {
			t.Fatalf("call %d err = %v, want UNAVAILABLE", i, err)
		}
	}
	if e.State() != gobreaker.StateOpen || !opened.Load() {
		t.Fatalf("breaker state = %v, want open", e.State())
	}

	_, err := e.Embed(context.Background(), "x")
	if !core.IsUnavailable(err) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker err = %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2 (third call short-circuited)", got)
	}
}

func TestOpenAIEmbedder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL, "m", WithOpenAITimeout(50*time.Millisecond))
	start := time.Now()
	_, err := e.Embed(context.Background(), "x")
	if !core.IsUnavailable(err) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not applied, took %v", time.Since(start))
	}
}

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ServiceConfig
		wantNil bool
		wantErr bool
	}{
		{"nil config", nil, true, true},
		{"none", &ServiceConfig{Type: ServiceTypeNone}, true, false},
		{"openai", &ServiceConfig{Type: ServiceTypeOpenAI, Endpoint: "http://localhost:8080/v1", ModelName: "m"}, false, false},
		{"missing endpoint", &ServiceConfig{Type: ServiceTypeOpenAI, ModelName: "m"}, true, true},
		{"missing model", &ServiceConfig{Type: ServiceTypeOpenAI, Endpoint: "http://x"}, true, true},
		{"unknown type", &ServiceConfig{Type: "grpc", Endpoint: "x", ModelName: "m"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := NewEmbedder(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (emb == nil) != tt.wantNil {
				t.Errorf("embedder = %v, wantNil %v", emb, tt.wantNil)
			}
		})
	}
}
