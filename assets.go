package canopy

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// AssetLoader fetches and decodes images. Load runs on a background
// goroutine and must honor ctx cancellation.
type AssetLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// AssetLoaderFunc adapts a function to AssetLoader.
type AssetLoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load calls f.
func (f AssetLoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// DefaultLoader loads http(s) URLs and local files (plain paths or
// file:// URLs) and decodes png, jpeg, gif, bmp and webp.
type DefaultLoader struct {
	// Client is used for http(s) sources. Nil means http.DefaultClient.
	Client *http.Client
	// Root is joined to relative file paths.
	Root string
}

// Load fetches and decodes src.
func (l DefaultLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.loadHTTP(ctx, src)
	}
	path := src
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("canopy: load %s: %w", src, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("canopy: decode %s: %w", src, err)
	}
	return img, nil
}

func (l DefaultLoader) loadHTTP(ctx context.Context, src string) (image.Image, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("canopy: load %s: %w", src, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canopy: load %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("canopy: load %s: unexpected status %s", src, resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("canopy: decode %s: %w", src, err)
	}
	return img, nil
}

// ImageCache holds decoded images by source. It is owned by a Stage:
// concurrent requests for the same source share one load, and completions
// are delivered on the frame thread through Stage.Post.
type ImageCache struct {
	loader AssetLoader
	stage  *Stage

	mu      sync.Mutex
	entries map[string]image.Image
	group   singleflight.Group
	wg      sync.WaitGroup
}

func newImageCache(loader AssetLoader, s *Stage) *ImageCache {
	return &ImageCache{loader: loader, stage: s, entries: make(map[string]image.Image)}
}

// Get returns the cached image for src.
func (c *ImageCache) Get(src string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[normalizeSrc(src)]
	return img, ok
}

// Put stores img under src, making later requests complete without a load.
func (c *ImageCache) Put(src string, img image.Image) {
	if img == nil {
		return
	}
	c.mu.Lock()
	c.entries[normalizeSrc(src)] = img
	c.mu.Unlock()
}

// Forget drops src from the cache.
func (c *ImageCache) Forget(src string) {
	c.mu.Lock()
	delete(c.entries, normalizeSrc(src))
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until every load started so far has finished. Completions
// are still delivered by the next Stage.Frame.
func (c *ImageCache) Wait() {
	c.wg.Wait()
}

// Request resolves src and calls done on the frame thread with the image or
// the load error. Failed loads are not cached.
func (c *ImageCache) Request(src string, done func(image.Image, error)) {
	s := c.stage
	key := normalizeSrc(src)
	if img, ok := c.Get(key); ok {
		s.Post(func() { done(img, nil) })
		return
	}
	ctx := s.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		v, err, _ := c.group.Do(key, func() (any, error) {
			if img, ok := c.Get(key); ok {
				return img, nil
			}
			img, err := c.loader.Load(ctx, key)
			if err != nil {
				return nil, err
			}
			c.Put(key, img)
			return img, nil
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("canopy: image load failed", zap.String("src", key), zap.Error(err))
			s.Post(func() { done(nil, err) })
			return
		}
		img := v.(image.Image)
		s.Post(func() { done(img, nil) })
	}()
}

func normalizeSrc(src string) string {
	return strings.TrimSpace(src)
}
