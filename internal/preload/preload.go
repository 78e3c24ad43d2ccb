// Package preload keeps a bounded in-memory cache of screenshot images warm
// around the playback cursor.
//
// Screenshot frames are independent images fetched by URL; there is no video
// container to stream. The preloader fetches a small eager batch at the
// cursor plus a larger capped background batch, fire-and-forget, so the draw
// step usually hits the cache. A fetch failure is a non-fatal diagnostic:
// the previous frame stays visible rather than blanking the canvas, and the
// clock is never blocked on the network.
package preload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"rejourney/internal/config"
	"rejourney/internal/logging"
	"rejourney/internal/session"
)

// Cache is an in-memory image store keyed by frame URL. It is mutex-guarded:
// the preloader's workers write while the draw path reads.
type Cache struct {
	mu     sync.Mutex
	images map[string][]byte
	order  []string
	limit  int
}

// NewCache builds a cache bounded to limit images; the oldest entries are
// evicted first.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = 1
	}
	return &Cache{images: make(map[string][]byte), limit: limit}
}

// Get returns the cached image bytes for url, if present.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.images[url]
	return data, ok
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

func (c *Cache) put(url string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[url]; ok {
		return
	}
	for len(c.images) >= c.limit && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.images, oldest)
	}
	c.images[url] = data
	c.order = append(c.order, url)
}

// Preloader fetches frame images ahead of the cursor on a bounded worker
// pool. All fetches are best-effort.
type Preloader struct {
	cache   *Cache
	client  *http.Client
	logger  *slog.Logger
	eager   int
	batch   int
	workers chan struct{}

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New builds a preloader from config. logger may be nil.
func New(cfg config.Preload, timeoutClient *http.Client, logger *slog.Logger) *Preloader {
	if timeoutClient == nil {
		timeoutClient = &http.Client{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Preloader{
		cache:    NewCache(cfg.CacheLimit),
		client:   timeoutClient,
		logger:   logging.NewComponentLogger(logger, "preload"),
		eager:    cfg.EagerBatch,
		batch:    cfg.BackgroundBatch,
		workers:  make(chan struct{}, workers),
		inflight: make(map[string]struct{}),
	}
}

// Cache exposes the image cache for the draw path.
func (p *Preloader) Cache() *Cache {
	return p.cache
}

// PreloadAround schedules fetches for the eager batch at currentIndex and
// the capped background batch behind it. It returns immediately; fetches
// ride the worker pool and stop when ctx is cancelled.
func (p *Preloader) PreloadAround(ctx context.Context, frames []session.Frame, currentIndex int) {
	if len(frames) == 0 {
		return
	}
	if currentIndex < 0 {
		currentIndex = 0
	}
	end := currentIndex + p.eager + p.batch
	if end > len(frames) {
		end = len(frames)
	}
	for i := currentIndex; i < end; i++ {
		p.schedule(ctx, frames[i].URL)
	}
}

func (p *Preloader) schedule(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if _, ok := p.cache.Get(url); ok {
		return
	}

	p.mu.Lock()
	if _, busy := p.inflight[url]; busy {
		p.mu.Unlock()
		return
	}
	p.inflight[url] = struct{}{}
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.inflight, url)
			p.mu.Unlock()
		}()

		select {
		case p.workers <- struct{}{}:
			defer func() { <-p.workers }()
		case <-ctx.Done():
			return
		}

		if err := p.fetch(ctx, url); err != nil {
			p.logger.Debug("frame preload failed",
				logging.String(logging.FieldFrameURL, url),
				logging.Error(err))
		}
	}()
}

func (p *Preloader) fetch(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	p.cache.put(url, data)
	return nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}
