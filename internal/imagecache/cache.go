// Package imagecache keeps a size-bounded on-disk copy of remote card images
// and symbol icons.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/metrics"
)

// Cache manages local caching of remote images with LRU eviction.
type Cache struct {
	cacheDir   string
	maxSize    int64 // Maximum cache size in bytes
	mu         sync.RWMutex
	sizes      map[string]int64     // Map of file path to file size
	lastUsed   map[string]time.Time // LRU tracking
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Options configures the image cache.
type Options struct {
	CacheDir string        // Directory to store cached images
	MaxSize  int64         // Maximum cache size in bytes (0 = unlimited)
	Timeout  time.Duration // HTTP request timeout
	Logger   *zap.Logger
	Metrics  *metrics.Metrics // optional
}

// New creates a new image cache.
func New(options Options) (*Cache, error) {
	if err := os.MkdirAll(options.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}

	cache := &Cache{
		cacheDir: options.CacheDir,
		maxSize:  options.MaxSize,
		sizes:    make(map[string]int64),
		lastUsed: make(map[string]time.Time),
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
		logger:  options.Logger,
		metrics: options.Metrics,
	}

	// Initialize cache metadata by scanning existing files
	if err := cache.scan(); err != nil {
		return nil, fmt.Errorf("failed to scan cache directory: %w", err)
	}

	return cache, nil
}

// Get returns the local path of imageURL, downloading it on first use.
func (c *Cache) Get(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image URL is empty")
	}

	cachePath := filepath.Join(c.cacheDir, cacheKey(imageURL))

	c.mu.Lock()
	if _, exists := c.sizes[cachePath]; exists {
		c.lastUsed[cachePath] = time.Now()
		c.mu.Unlock()
		c.metrics.RecordImage(true)
		return cachePath, nil
	}
	c.mu.Unlock()
	c.metrics.RecordImage(false)

	return c.downloadAndCache(ctx, imageURL, cachePath)
}

// downloadAndCache downloads an image and stores it in the cache.
func (c *Cache) downloadAndCache(ctx context.Context, imageURL, cachePath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(c.cacheDir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	size, err := io.Copy(tempFile, resp.Body)
	if err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSpace(size); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to ensure cache space: %w", err)
	}

	if err := os.Rename(tempPath, cachePath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to move cached file: %w", err)
	}

	c.sizes[cachePath] = size
	c.lastUsed[cachePath] = time.Now()
	c.logger.Debug("cached image", zap.String("url", imageURL), zap.Int64("bytes", size))

	return cachePath, nil
}

// ensureSpace evicts least recently used files to make room for a new file.
// Must be called with c.mu locked.
func (c *Cache) ensureSpace(neededSize int64) error {
	if c.maxSize == 0 {
		return nil // Unlimited cache size
	}

	var currentSize int64
	for _, size := range c.sizes {
		currentSize += size
	}

	if currentSize+neededSize <= c.maxSize {
		return nil
	}

	type fileEntry struct {
		path     string
		lastUsed time.Time
		size     int64
	}

	files := make([]fileEntry, 0, len(c.sizes))
	for p, size := range c.sizes {
		files = append(files, fileEntry{path: p, lastUsed: c.lastUsed[p], size: size})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].lastUsed.Before(files[j].lastUsed)
	})

	for _, file := range files {
		if currentSize+neededSize <= c.maxSize {
			break
		}

		if err := os.Remove(file.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to evict cached file: %w", err)
		}

		delete(c.sizes, file.path)
		delete(c.lastUsed, file.path)
		currentSize -= file.size
	}

	return nil
}

// Clear removes all cached images.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for p := range c.sizes {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached file: %w", err)
		}
	}

	c.sizes = make(map[string]int64)
	c.lastUsed = make(map[string]time.Time)

	return nil
}

// Stats contains statistics about the cache.
type Stats struct {
	TotalFiles int    `json:"totalFiles"`
	TotalSize  int64  `json:"totalSize"`
	MaxSize    int64  `json:"maxSize"`
	CacheDir   string `json:"cacheDir"`
}

// Stats returns statistics about the cache.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize int64
	for _, size := range c.sizes {
		totalSize += size
	}

	return Stats{
		TotalFiles: len(c.sizes),
		TotalSize:  totalSize,
		MaxSize:    c.maxSize,
		CacheDir:   c.cacheDir,
	}
}

// scan initializes cache metadata from the files already on disk.
func (c *Cache) scan() error {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) == ".tmp" {
			continue
		}

		p := filepath.Join(c.cacheDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		c.sizes[p] = info.Size()
		c.lastUsed[p] = info.ModTime()
	}

	return nil
}

// cacheKey names the cached file after the URL hash, keeping the URL's
// extension so the content type can be inferred when serving it.
func cacheKey(imageURL string) string {
	hash := sha256.Sum256([]byte(imageURL))

	ext := ".jpg"
	trimmed := imageURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if e := path.Ext(trimmed); e == ".svg" || e == ".png" || e == ".jpg" {
		ext = e
	}

	return hex.EncodeToString(hash[:]) + ext
}
