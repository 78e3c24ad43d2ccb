package preload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rejourney/internal/config"
	"rejourney/internal/session"
)

func TestCacheEvictsOldestAtLimit(t *testing.T) {
	cache := NewCache(2)
	cache.put("a", []byte("1"))
	cache.put("b", []byte("2"))
	cache.put("c", []byte("3"))

	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("entry b evicted early")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry missing")
	}
	if cache.Len() != 2 {
		t.Errorf("len = %d, want 2", cache.Len())
	}
}

func TestCachePutIsIdempotent(t *testing.T) {
	cache := NewCache(3)
	cache.put("a", []byte("1"))
	cache.put("a", []byte("other"))
	data, _ := cache.Get("a")
	if string(data) != "1" {
		t.Errorf("second put replaced cached bytes: %q", data)
	}
}

func preloadConfig() config.Preload {
	return config.Preload{
		Enabled:         true,
		EagerBatch:      2,
		BackgroundBatch: 4,
		Workers:         2,
		CacheLimit:      50,
	}
}

func waitForCache(t *testing.T, cache *Cache, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for cache.Len() < want {
		select {
		case <-deadline:
			t.Fatalf("cache reached %d entries, want %d", cache.Len(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPreloadAroundFetchesBatch(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("img" + r.URL.Path))
	}))
	defer server.Close()

	frames := make([]session.Frame, 10)
	for i := range frames {
		frames[i] = session.Frame{URL: server.URL + "/f" + string(rune('0'+i))}
	}

	p := New(preloadConfig(), server.Client(), nil)
	p.PreloadAround(context.Background(), frames, 0)

	// Eager 2 + background 4 from index 0.
	waitForCache(t, p.Cache(), 6)
	if got := hits.Load(); got != 6 {
		t.Errorf("fetches = %d, want 6", got)
	}
	if _, ok := p.Cache().Get(frames[0].URL); !ok {
		t.Error("current frame not cached")
	}
}

func TestPreloadAroundSkipsCachedAndInflight(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("img"))
	}))
	defer server.Close()

	frames := []session.Frame{{URL: server.URL + "/only"}}
	p := New(preloadConfig(), server.Client(), nil)

	p.PreloadAround(context.Background(), frames, 0)
	waitForCache(t, p.Cache(), 1)
	p.PreloadAround(context.Background(), frames, 0)
	time.Sleep(20 * time.Millisecond)

	if got := hits.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1 (cached frame refetched)", got)
	}
}

func TestPreloadFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	frames := []session.Frame{{URL: server.URL + "/missing"}}
	p := New(preloadConfig(), server.Client(), nil)
	p.PreloadAround(context.Background(), frames, 0)

	time.Sleep(50 * time.Millisecond)
	if p.Cache().Len() != 0 {
		t.Error("failed fetch ended up in the cache")
	}
	// A later frame draw simply misses; nothing panicked, nothing blocked.
	if _, ok := p.Cache().Get(frames[0].URL); ok {
		t.Error("missing frame reported as cached")
	}
}

func TestPreloadRespectsCancelledContext(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("img"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := []session.Frame{{URL: server.URL + "/f"}}
	p := New(preloadConfig(), server.Client(), nil)
	p.PreloadAround(ctx, frames, 0)

	time.Sleep(30 * time.Millisecond)
	if p.Cache().Len() != 0 {
		t.Error("cancelled preload still populated the cache")
	}
}

func TestPreloadClampsWindowToFrameCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer server.Close()

	frames := []session.Frame{
		{URL: server.URL + "/a"},
		{URL: server.URL + "/b"},
	}
	p := New(preloadConfig(), server.Client(), nil)
	p.PreloadAround(context.Background(), frames, 1)
	waitForCache(t, p.Cache(), 1)

	p.PreloadAround(context.Background(), frames, 99)
	p.PreloadAround(context.Background(), frames, -5)
	waitForCache(t, p.Cache(), 2)
}
