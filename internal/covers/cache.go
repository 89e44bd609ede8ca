package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	userAgent = "BookLibrary/1.0"

	// maxCoverBytes caps a downloaded cover image.
	maxCoverBytes = 10 << 20
)

// ErrCoverTooLarge is returned when a cover image exceeds maxCoverBytes.
var ErrCoverTooLarge = errors.New("cover image too large")

// Cache keeps downloaded book cover images on disk, one file per book and URL.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates the cache directory if needed.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the path of the cached cover for a book, downloading it
// first when needed. It returns "" for a book without a cover URL.
func (c *Cache) GetCover(ctx context.Context, bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// InvalidateCover removes every cached cover of a book.
func (c *Cache) InvalidateCover(bookID uint) error {
	return c.removeMatching(fmt.Sprintf("cover_%d_*", bookID))
}

// Clear removes every cached cover.
func (c *Cache) Clear() error {
	return c.removeMatching("cover_*")
}

func (c *Cache) removeMatching(pattern string) error {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, pattern))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// coverFilename is stable for a book and URL, so a changed cover URL never
// serves a stale image.
func (c *Cache) coverFilename(bookID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, hash[:8])
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(c.cacheDir, "tmp_cover_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > maxCoverBytes {
		return ErrCoverTooLarge
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
