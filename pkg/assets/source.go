package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// ErrNotFound is returned by a Source that has no file with the given name.
var ErrNotFound = errors.New("template asset not found")

// Source fetches the bytes of a named template asset.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirSource serves assets from a file system, typically os.DirFS.
type DirSource struct {
	FS fs.FS
}

func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid asset name %q", name)
	}
	data, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// DefaultTemplatePath is where official PDFs are served from.
const DefaultTemplatePath = "/templates/"

// HTTPSource fetches assets from BaseURL + Path + escaped name.
type HTTPSource struct {
	BaseURL string
	Path    string       // Defaults to DefaultTemplatePath
	Client  *http.Client // nil means http.DefaultClient
	MaxSize int64        // 0 means 32 MiB
}

// URL returns the address name is fetched from.
func (s HTTPSource) URL(name string) string {
	p := s.Path
	if p == "" {
		p = DefaultTemplatePath
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return strings.TrimSuffix(s.BaseURL, "/") + p + url.PathEscape(name)
}

func (s HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", name, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", name, resp.Status)
	}

	limit := s.MaxSize
	if limit <= 0 {
		limit = 32 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", name, limit)
	}
	return data, nil
}

// CachedSource memoises successful fetches of the wrapped Source by name.
// Cached bytes are shared between callers and must not be modified.
type CachedSource struct {
	Source Source

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewCachedSource wraps src.
func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{Source: src, cache: make(map[string][]byte)}
}

func (c *CachedSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	c.mu.RLock()
	if b, ok := c.cache[name]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	data, err := c.Source.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string][]byte)
	}
	c.cache[name] = data
	c.mu.Unlock()
	return data, nil
}

// Len returns the number of cached assets.
func (c *CachedSource) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
