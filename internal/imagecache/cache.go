// Package imagecache converts remote thumbnail references into downscaled,
// locally held image handles, exactly once per distinct item. The live card
// grid and the PDF preview generator share one instance so preview generation
// never re-fetches thumbnails already resolved for the screen.
package imagecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/png"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCapacity bounds resident entries across a long session.
	DefaultCapacity = 200
	// DefaultQuality is the JPEG re-encode quality.
	DefaultQuality = 88
	// prefetchConcurrency bounds simultaneous thumbnail fetches.
	prefetchConcurrency = 6
)

// ErrDisposed is returned by Resolve after the cache has been disposed.
var ErrDisposed = errors.New("image cache disposed")

// Handle is a locally addressable, cache-owned image resource. Callers treat
// it as opaque and must not retain the bytes past eviction; Valid reports
// whether the underlying resource is still resident.
type Handle struct {
	ID          string
	ContentType string
	Width       int
	Height      int

	mu   sync.Mutex
	data []byte
}

// Bytes returns the encoded image, or nil after the handle was released.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data
}

// Valid reports whether the handle still owns its resource.
func (h *Handle) Valid() bool {
	return h.Bytes() != nil
}

func (h *Handle) release() {
	h.mu.Lock()
	h.data = nil
	h.mu.Unlock()
}

// Options configures a Cache. Zero values fall back to defaults.
type Options struct {
	Capacity     int
	Quality      int
	FetchTimeout time.Duration
	Client       *http.Client
	Logger       *logrus.Logger
}

// Cache deduplicates, downsamples and retains thumbnail fetches behind a
// bounded LRU. Safe for concurrent use; access per id is effectively atomic
// (no two resolutions for the same id race past the dedup check).
type Cache struct {
	client  *http.Client
	log     *logrus.Logger
	quality int

	group singleflight.Group

	mu       sync.Mutex
	entries  *lru.Cache[string, *Handle]
	fetches  int
	disposed bool
}

// New constructs a Cache with its own lifecycle; call Dispose when done so
// evicted and resident resources are released deterministically.
func New(opts Options) (*Cache, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Client == nil {
		timeout := opts.FetchTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		opts.Client = &http.Client{Timeout: timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	c := &Cache{
		client:  opts.Client,
		log:     opts.Logger,
		quality: opts.Quality,
	}
	entries, err := lru.NewWithEvict[string, *Handle](opts.Capacity, func(id string, h *Handle) {
		h.release()
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// TargetHeight derives the cached image height from the display height and
// the device pixel ratio, with the oversampling factor clamped to [2,3].
func TargetHeight(displayHeight int, devicePixelRatio float64) int {
	factor := math.Min(3, math.Max(2, devicePixelRatio))
	return int(math.Round(float64(displayHeight) * factor))
}

// Resolve returns the handle for id, fetching, decoding and downscaling the
// remote image on first use. Concurrent calls for the same id share a single
// in-flight fetch; later calls are served from memory and promote the entry.
func (c *Cache) Resolve(ctx context.Context, id, remoteURL string, targetHeight int) (*Handle, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, ErrDisposed
	}
	if h, ok := c.entries.Get(id); ok {
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		// Re-check: the entry may have landed while we waited on the group.
		c.mu.Lock()
		if h, ok := c.entries.Get(id); ok {
			c.mu.Unlock()
			return h, nil
		}
		c.mu.Unlock()

		raw, err := c.fetch(ctx, remoteURL)
		if err != nil {
			return nil, err
		}
		h, err := c.process(id, raw, targetHeight)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed {
			return nil, ErrDisposed
		}
		c.entries.Add(id, h)
		return h, nil
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{"id": id, "url": remoteURL}).
			WithError(err).Warn("thumbnail resolution failed, caller falls back to remote URL")
		return nil, err
	}
	return v.(*Handle), nil
}

// Ref names one thumbnail to warm up.
type Ref struct {
	ID           string
	RemoteURL    string
	TargetHeight int
}

// Prefetch resolves refs with bounded concurrency. Individual failures are
// already logged by Resolve and do not abort the remaining work.
func (c *Cache) Prefetch(ctx context.Context, refs []Ref) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)
	for _, ref := range refs {
		ref := ref
		if ref.ID == "" || ref.RemoteURL == "" {
			continue
		}
		g.Go(func() error {
			c.Resolve(gctx, ref.ID, ref.RemoteURL, ref.TargetHeight)
			return nil
		})
	}
	g.Wait()
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// FetchCount returns how many network fetches have been issued. Used by tests
// to assert the dedup contract.
func (c *Cache) FetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// Dispose releases every resident resource and rejects further resolutions.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.entries.Purge()
}

func (c *Cache) fetch(ctx context.Context, remoteURL string) ([]byte, error) {
	c.mu.Lock()
	c.fetches++
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail fetch: HTTP %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// process decodes untrusted bytes and downscales so the height never exceeds
// targetHeight, preserving aspect ratio and never upscaling, then re-encodes
// at fixed JPEG quality.
func (c *Cache) process(id string, raw []byte, targetHeight int) (*Handle, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if targetHeight > 0 && h > targetHeight {
		ratio := float64(targetHeight) / float64(h)
		w = int(math.Round(float64(b.Dx()) * ratio))
		if w < 1 {
			w = 1
		}
		h = targetHeight
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &Handle{
		ID:          id,
		ContentType: "image/jpeg",
		Width:       w,
		Height:      h,
		data:        out.Bytes(),
	}, nil
}
