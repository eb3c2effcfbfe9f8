package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxCoverSize bounds a single download.
const maxCoverSize = 10 << 20

// Cache downloads cover images into a local directory once.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates the directory if needed and returns a cache rooted there.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cover dir: %w", err)
	}
	return &Cache{
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Fetch returns the local path of the cover at coverURL, downloading it
// first if it is not cached yet. The file is named after the last path
// segment of the URL with a .jpg suffix.
func (c *Cache) Fetch(ctx context.Context, coverURL string) (string, error) {
	target := filepath.Join(c.cacheDir, c.coverFilename(coverURL))
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	if err := c.download(ctx, coverURL, target); err != nil {
		return "", fmt.Errorf("download cover %s: %w", coverURL, err)
	}
	return target, nil
}

// coverFilename derives the cache file name from the URL path.
func (c *Cache) coverFilename(coverURL string) string {
	name := coverURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return path.Base(name) + ".jpg"
}

// download writes the body of coverURL to target through a temporary file
// in the same directory, so target is either complete or absent.
func (c *Cache) download(ctx context.Context, coverURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	part, err := os.CreateTemp(c.cacheDir, ".cover-*")
	if err != nil {
		return err
	}
	defer os.Remove(part.Name())

	_, copyErr := io.Copy(part, io.LimitReader(resp.Body, maxCoverSize))
	if closeErr := part.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return copyErr
	}
	return os.Rename(part.Name(), target)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
