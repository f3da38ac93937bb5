package policy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-splendor/engine"
)

func TestHeuristicPrefersPoints(t *testing.T) {
	h := DefaultHeuristic()
	low := make([]float64, engine.FeatureLen)
	high := make([]float64, engine.FeatureLen)
	high[engine.OffsetPoints] = 3
	a, err := h.Score(context.Background(), low)
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Score(context.Background(), high)
	if err != nil {
		t.Fatal(err)
	}
	if b <= a || a < 0 {
		t.Fatalf("scores %v, %v", a, b)
	}
}

func TestHeuristicRejectsWrongLength(t *testing.T) {
	if _, err := DefaultHeuristic().Score(context.Background(), []float64{1, 2}); err == nil {
		t.Fatal("expected length error")
	}
}

func TestHTTPEvaluator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sum := 0.0
		for _, v := range req.Features {
			sum += v
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": sum})
	}))
	defer srv.Close()

	ev := NewHTTPEvaluator(srv.URL, time.Second, nil)
	got, err := ev.Score(context.Background(), []float64{1, 2, 3.5})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 6.5 {
		t.Fatalf("Score = %v, want 6.5", got)
	}
}

func TestHTTPEvaluatorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			_, _ = w.Write([]byte(`{"other": 1}`))
		case "/negative":
			_, _ = w.Write([]byte(`{"result": -2}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/missing", "/negative", "/boom"} {
		ev := NewHTTPEvaluator(srv.URL+path, time.Second, nil)
		if _, err := ev.Score(context.Background(), []float64{1}); err == nil {
			t.Fatalf("%s: expected error", path)
		}
	}
}
