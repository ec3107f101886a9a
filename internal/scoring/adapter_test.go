package scoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

func TestScoreSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/score" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score": 87.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got := c.Score(context.Background(), Request{Type: models.TypeBoardDirector})
	if got != 87.5 {
		t.Fatalf("expected 87.5, got %f", got)
	}
}

func TestScoreErrorResponseFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if got := c.Score(context.Background(), Request{}); got != FallbackScore {
		t.Fatalf("expected fallback %f, got %f", FallbackScore, got)
	}
}

func TestScoreUnreachableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, nil)
	if got := c.Score(context.Background(), Request{}); got != FallbackScore {
		t.Fatalf("expected fallback %f, got %f", FallbackScore, got)
	}
}

func TestScoreClampsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"score": 640}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if got := c.Score(context.Background(), Request{}); got != 100 {
		t.Fatalf("expected clamp to 100, got %f", got)
	}
}

func TestScoreUnconfiguredFallsBack(t *testing.T) {
	c := NewClient("", nil)
	if got := c.Score(context.Background(), Request{}); got != FallbackScore {
		t.Fatalf("expected fallback %f, got %f", FallbackScore, got)
	}
}
