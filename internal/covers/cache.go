// Package covers keeps local copies of the featured book covers so the
// carousel does not hit the remote image host on every rotation.
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
	"regexp"
	"sync"
	"time"
)

// maxCoverBytes caps a single download.
const maxCoverBytes = 5 << 20

// ErrCoverTooLarge is returned for covers over maxCoverBytes.
var ErrCoverTooLarge = errors.New("cover exceeds size limit")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client

	// inflight serializes downloads of the same file.
	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		inflight: make(map[string]*sync.Mutex),
	}, nil
}

// GetCover returns the cached cover for a volume, or fetches and caches it
// if not present. Returns the file path to the cached cover, or an empty
// string when the volume has no cover.
func (c *Cache) GetCover(ctx context.Context, volumeID, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	filename := c.coverFilename(volumeID, coverURL)
	cachePath := filepath.Join(c.cacheDir, filename)

	lock := c.lockFor(filename)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

func (c *Cache) lockFor(filename string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.inflight[filename]
	if !ok {
		l = &sync.Mutex{}
		c.inflight[filename] = l
	}
	return l
}

func safeID(volumeID string) string {
	return unsafeChars.ReplaceAllString(volumeID, "_")
}

// coverFilename is unique per volume and URL, so a changed cover URL is
// fetched again.
func (c *Cache) coverFilename(volumeID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.img", safeID(volumeID), hash[:8])
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "HallowedShelf/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxCoverBytes {
		return ErrCoverTooLarge
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
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
