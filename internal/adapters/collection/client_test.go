package collection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExecuteKeywordSearchCycle_DecodesResult(t *testing.T) {
	var gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"search_results":7,"processing_results":5,"entity_id":"e1","found":true}`))
	}))
	defer ts.Close()

	c := NewClient(Options{BaseURL: ts.URL})
	res, err := c.ExecuteKeywordSearchCycle(
		context.Background(), "40.50,-73.50", []string{"birria"}, []string{"newest"},
	)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if gotPath != "/internal/cycles" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody == "" || res.SearchResults != 7 || !res.Found || res.EntityID != "e1" {
		t.Fatalf("result = %+v body = %q", res, gotBody)
	}
}

func TestExecuteKeywordSearchCycle_ErrorStatusIsNotRetried(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "worker crashed", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(Options{BaseURL: ts.URL})
	if _, err := c.ExecuteKeywordSearchCycle(context.Background(), "k", []string{"x"}, nil); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, a cycle must never be re-run", calls)
	}
}

func TestQueueDepth_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"execution":{"waiting":4,"active":2},"processing":{"waiting":9}}`))
	}))
	defer ts.Close()

	c := NewClient(Options{BaseURL: ts.URL, RetryBase: time.Millisecond})
	c.sleep = func(time.Duration) {}

	depth, err := c.QueueDepth(context.Background())
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if depth.Execution.Waiting != 4 || depth.Execution.Active != 2 || depth.Processing.Waiting != 9 {
		t.Fatalf("depth = %+v", depth)
	}
}

func TestQueueDepth_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(Options{BaseURL: ts.URL, MaxRetries: 2, RetryBase: time.Millisecond})
	c.sleep = func(time.Duration) {}

	if _, err := c.QueueDepth(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want initial plus 2 retries", calls)
	}
}
