package imagecache

//go:generate mockgen -destination=mock/mock_loader.go -package=mockimagecache -source=cache.go

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// Loader fetches and decodes one image
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Config holds configuration for the cache
type Config struct {
	Loader Loader // Required

	// Concurrency caps in-flight loads during Preload. Zero or less means no cap.
	Concurrency int
}

// Stats summarizes one Preload call
type Stats struct {
	Requested int
	Loaded    int
	Failed    int
	Skipped   int // already cached
	Duration  time.Duration
}

// Cache memoizes decoded images by ref for the life of the process. Entries are only
// ever added, each at most once, so a read sees either nothing or the complete image.
type Cache struct {
	loader      Loader
	concurrency int

	mu     sync.RWMutex
	images map[string]image.Image
}

// New creates an empty cache
func New(cfg *Config) *Cache {
	if cfg == nil || cfg.Loader == nil {
		panic("loader is required")
	}

	return &Cache{
		loader:      cfg.Loader,
		concurrency: cfg.Concurrency,
		images:      make(map[string]image.Image),
	}
}

// Preload loads every ref concurrently and returns once each load has either succeeded
// or failed. Failures are logged and leave the entry absent; they are never retried
// and never returned. Cancelling ctx makes pending loads fail the same way.
func (c *Cache) Preload(ctx context.Context, refs []string) Stats {
	start := time.Now()
	stats := Stats{Requested: len(refs)}

	pending := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if c.Has(ref) {
			stats.Skipped++
			continue
		}
		pending = append(pending, ref)
	}

	var (
		countMu sync.Mutex
		g       errgroup.Group
	)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for _, ref := range pending {
		ref := ref
		g.Go(func() error {
			ok := c.load(ctx, ref)

			countMu.Lock()
			defer countMu.Unlock()
			if ok {
				stats.Loaded++
			} else {
				stats.Failed++
			}
			return nil
		})
	}
	// Loads never return errors; Wait is only the completion barrier
	_ = g.Wait()

	stats.Duration = time.Since(start)
	log.Printf("ImageCache: preloaded %d/%d assets (%d failed, %d already cached) in %s",
		stats.Loaded, len(pending), stats.Failed, stats.Skipped, stats.Duration)
	return stats
}

func (c *Cache) load(ctx context.Context, ref string) bool {
	img, err := c.loader.Load(ctx, ref)
	if err == nil && img == nil {
		err = apperr.Internalf("loader returned no image")
	}
	if err != nil {
		log.Printf("ImageCache: %v", apperr.LoadFailure(err, ref))
		return false
	}

	c.store(ref, img)
	return true
}

func (c *Cache) store(ref string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.images[ref]; exists {
		return
	}
	c.images[ref] = img
}

// Has reports whether ref is cached
func (c *Cache) Has(ref string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.images[ref]
	return ok
}

// Get returns the cached image for ref
func (c *Cache) Get(ref string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	img, ok := c.images[ref]
	return img, ok
}

// Len returns the number of cached images
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.images)
}
