package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calriss/corsair/internal/common"
)

func fastFetcher(opts ...Option) *Fetcher {
	base := []Option{
		WithLogger(common.NewSilentLogger()),
		WithRateLimit(1000),
		WithBackoff(time.Millisecond),
	}
	return NewFetcher(append(base, opts...)...)
}

func TestGetRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastFetcher().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetExhaustsAttemptBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fastFetcher().Get(context.Background(), srv.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fe.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", fe.StatusCode)
	}
	if atomic.LoadInt32(&calls) != DefaultAttempts {
		t.Errorf("calls = %d, want %d", calls, DefaultAttempts)
	}
}

func TestGetClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastFetcher(WithAttempts(1)).Get(context.Background(), srv.URL)
	if !IsRateLimited(err) {
		t.Fatalf("err = %v, want RateLimitError", err)
	}
}

func TestGetClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := fastFetcher(WithAttempts(1), WithTimeout(20*time.Millisecond))
	_, err := f.Get(context.Background(), srv.URL)
	if !IsTimeout(err) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
}

func TestGetHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastFetcher(WithBackoff(time.Second)).Get(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestGetDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="target">hello</div></body></html>`))
	}))
	defer srv.Close()

	doc, err := fastFetcher().GetDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got := doc.Find("#target").Text(); got != "hello" {
		t.Errorf("target text = %q", got)
	}
}
