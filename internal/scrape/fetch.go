package scrape

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appLog "menucal/internal/log"
	"menucal/internal/menu"
)

// FragmentFetcher retrieves the widget's rendered HTML fragment for
// one meal type and one month window. A fetch failure is reported as
// an error, distinct from a fragment that parses to zero days.
type FragmentFetcher interface {
	FetchFragment(ctx context.Context, meal menu.MealType, year int, month time.Month) ([]byte, error)
}

// cacheEntry holds HTTP cache metadata for one fragment URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher retrieves calendar fragments over plain HTTP with
// ETag / Last-Modified conditional requests and a disk-backed body
// cache, so a flaky widget host degrades to stale data instead of no
// data.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	schoolID string
	cacheDir string
}

// NewFetcher creates a fragment Fetcher. cacheDir is where per-URL
// cache subdirectories live, e.g. "/var/lib/menucal/fragment-cache".
func NewFetcher(baseURL, schoolID, cacheDir string) *Fetcher {
	if cacheDir == "" {
		// Relative fallback so development runs without root.
		cacheDir = "./var/fragment-cache"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:  baseURL,
		schoolID: schoolID,
		cacheDir: cacheDir,
	}
}

// fragmentURL builds the AJAX endpoint URL for one meal and month
// window. The widget counts months from zero, so the query parameter
// is month-1.
func (f *Fetcher) fragmentURL(meal menu.MealType, year int, month time.Month) string {
	q := url.Values{}
	q.Set("school", f.schoolID)
	q.Set("meal", string(meal))
	q.Set("year", fmt.Sprint(year))
	q.Set("month", fmt.Sprint(int(month)-1))
	return f.baseURL + "?" + q.Encode()
}

// FetchFragment fetches one fragment, honoring ETag and Last-Modified.
func (f *Fetcher) FetchFragment(ctx context.Context, meal menu.MealType, year int, month time.Month) ([]byte, error) {
	if f.baseURL == "" {
		return nil, errors.New("fragment base URL is empty")
	}

	fullURL := f.fragmentURL(meal, year, month)

	cachePath, err := f.cachePathForURL(fullURL)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("fragment fetch start", "meal", meal, "year", year, "month", int(month))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("fragment fetch network error, using cached body", err, "meal", meal)
			return cachedBody, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		newMeta := cacheEntry{
			URL:          fullURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			// Keep the freshly fetched body even if caching failed.
			appLog.Error("fragment cache save failed", err, "meal", meal)
		}

		appLog.Info("fragment fetch success", "meal", meal, "status", resp.StatusCode, "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("fragment not modified; using cache", "meal", meal)
		return cachedBody, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("fragment fetch non-OK, using cached body", errors.New(resp.Status), "meal", meal, "status", resp.StatusCode)
			return cachedBody, nil
		}
		return nil, errors.New(resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(u string) (string, error) {
	if u == "" {
		return "", errors.New("empty url")
	}
	sum := sha256.Sum256([]byte(u))
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(f.cacheDir, dir), nil
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.html"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.html"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
