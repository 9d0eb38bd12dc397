package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// FileStore persists the posted-links set as a JSON array of URL strings,
// human-inspectable and rewritten wholesale on each save.
type FileStore struct {
	path string
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		seen: make(map[string]struct{}),
	}
}

// Load reads the persisted list. A missing, empty or corrupt file yields an
// empty set; only an unreadable existing file is reported.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		slog.Info("no posted links file, starting fresh", "path", fs.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read posted links: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		slog.Warn("posted links file corrupt, starting fresh", "path", fs.path, "error", err)
		fs.seen = make(map[string]struct{})
		return nil
	}

	for _, u := range urls {
		fs.seen[u] = struct{}{}
	}
	slog.Info("loaded posted links", "count", len(fs.seen))
	return nil
}

// Save rewrites the whole file. The list is sorted so the artifact is stable
// across runs regardless of insertion order.
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	urls := make([]string, 0, len(fs.seen))
	for u := range fs.seen {
		urls = append(urls, u)
	}
	fs.mu.RUnlock()
	sort.Strings(urls)

	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posted links: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		return fmt.Errorf("write posted links: %w", err)
	}
	return nil
}

func (fs *FileStore) Contains(url string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.seen[url]
	return ok
}

func (fs *FileStore) Add(url string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.seen[url] = struct{}{}
	return nil
}
