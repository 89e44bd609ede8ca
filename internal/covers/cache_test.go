package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func imageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "covers")

	cache, err := NewCache(cacheDir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if cache.CacheDir() != cacheDir {
		t.Errorf("expected cache dir %s, got %s", cacheDir, cache.CacheDir())
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}

func TestGetCover_EmptyURL(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	path, err := cache.GetCover(context.Background(), 1, "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for empty URL, got %s", path)
	}
}

func TestGetCover_FetchesOnce(t *testing.T) {
	var hits int32
	server := imageServer(t, &hits)
	cache, _ := NewCache(t.TempDir())
	ctx := context.Background()

	path1, err := cache.GetCover(ctx, 1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	data, err := os.ReadFile(path1)
	if err != nil {
		t.Fatalf("cached file not readable: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("unexpected cached content %q", data)
	}

	path2, err := cache.GetCover(ctx, 1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover (cached) failed: %v", err)
	}
	if path1 != path2 {
		t.Error("expected same path for cached request")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 download, got %d", got)
	}
}

func TestGetCover_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	cache, _ := NewCache(dir)

	if _, err := cache.GetCover(context.Background(), 1, server.URL+"/missing.jpg"); err == nil {
		t.Error("expected error for 404 response")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, got %d", len(entries))
	}
}

func TestGetCover_CancelledContext(t *testing.T) {
	server := imageServer(t, nil)
	cache, _ := NewCache(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.GetCover(ctx, 1, server.URL+"/cover.jpg"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestInvalidateCover(t *testing.T) {
	server := imageServer(t, nil)
	cache, _ := NewCache(t.TempDir())
	ctx := context.Background()

	path1, err := cache.GetCover(ctx, 1, server.URL+"/a.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	path2, err := cache.GetCover(ctx, 2, server.URL+"/b.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}

	if err := cache.InvalidateCover(1); err != nil {
		t.Fatalf("InvalidateCover failed: %v", err)
	}

	if _, err := os.Stat(path1); !os.IsNotExist(err) {
		t.Error("cover of book 1 should be deleted after invalidation")
	}
	if _, err := os.Stat(path2); err != nil {
		t.Error("cover of book 2 should survive invalidation of book 1")
	}
}

func TestClear(t *testing.T) {
	server := imageServer(t, nil)
	dir := t.TempDir()
	cache, _ := NewCache(dir)
	ctx := context.Background()

	for id := uint(1); id <= 3; id++ {
		if _, err := cache.GetCover(ctx, id, server.URL+"/cover.jpg"); err != nil {
			t.Fatalf("GetCover failed: %v", err)
		}
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty cache dir, got %d entries", len(entries))
	}
}

func TestCoverFilename(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	name1 := cache.coverFilename(1, "https://example.com/cover.jpg")
	if name1 != cache.coverFilename(1, "https://example.com/cover.jpg") {
		t.Error("same inputs should produce same filename")
	}
	if name1 == cache.coverFilename(1, "https://example.com/other.jpg") {
		t.Error("different URLs should produce different filenames")
	}
	if name1 == cache.coverFilename(2, "https://example.com/cover.jpg") {
		t.Error("different book IDs should produce different filenames")
	}
}
