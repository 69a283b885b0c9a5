package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// otherKind holds entries whose key has no kind a Keyer would produce.
const otherKind = "other"

var errCorrupt = errors.New("corrupt cache entry")

// FileCache stores one JSON file per entry under a directory, grouped by key
// kind:
//
//	<dir>/solve/3f/9a0c….json
//	<dir>/render/b2/71de….json
//
// Concurrent writers of the same key may race; the last rename wins.
type FileCache struct {
	dir    string
	maxAge map[string]time.Duration
	now    func() time.Time
}

// FileOption configures a [FileCache].
type FileOption func(*FileCache)

// WithMaxAge stops serving entries of kind once they are older than d,
// whatever TTL they were stored with. A zero d removes the limit.
func WithMaxAge(kind string, d time.Duration) FileOption {
	return func(c *FileCache) {
		if d <= 0 {
			delete(c.maxAge, kind)
			return
		}
		c.maxAge[kind] = d
	}
}

// NewFileCache creates a file cache in dir, creating the directory if
// needed.
func NewFileCache(dir string, opts ...FileOption) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	c := &FileCache{dir: dir, maxAge: make(map[string]time.Duration), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// fileEntry is the stored form of one entry.
type fileEntry struct {
	Kind      string    `json:"kind"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

func (e *fileEntry) expired(now time.Time, maxAge time.Duration) bool {
	if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
		return true
	}
	return maxAge > 0 && now.Sub(e.StoredAt) > maxAge
}

// Get returns the entry for key. Unreadable and expired entries are removed
// and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	entry, err := readEntry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if errors.Is(err, errCorrupt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.expired(c.now(), c.maxAge[entry.Kind]) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data under key. The file is written beside its final name and
// renamed into place, so readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	entry := fileEntry{Kind: kindDir(key), StoredAt: now, Data: data}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. A missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// KindUsage summarizes the entries of one key kind.
type KindUsage struct {
	Entries int   // Entries on disk, expired or not
	Expired int   // Entries past their TTL or max age
	Bytes   int64 // Size of the entry files
}

// Usage reports the entries on disk per kind. Kinds without entries are
// omitted.
func (c *FileCache) Usage() (map[string]KindUsage, error) {
	usage := make(map[string]KindUsage)
	now := c.now()
	err := c.walk(nil, func(kind, path string, info fs.FileInfo) error {
		u := usage[kind]
		u.Entries++
		u.Bytes += info.Size()
		if entry, err := readEntry(path); err != nil || entry.expired(now, c.maxAge[kind]) {
			u.Expired++
		}
		usage[kind] = u
		return nil
	})
	return usage, err
}

// Prune removes expired and unreadable entries of the given kinds, or of
// every kind when none are given. It returns how many were removed.
func (c *FileCache) Prune(kinds ...string) (int, error) {
	now := c.now()
	removed := 0
	err := c.walk(kinds, func(kind, path string, _ fs.FileInfo) error {
		entry, err := readEntry(path)
		if err == nil && !entry.expired(now, c.maxAge[kind]) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Clear removes every entry of the given kinds, or of every kind when none
// are given. It returns how many were removed. A missing directory counts as
// an empty cache.
func (c *FileCache) Clear(kinds ...string) (int, error) {
	removed := 0
	err := c.walk(kinds, func(_, path string, _ fs.FileInfo) error {
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	for _, kind := range kindsOrAll(kinds) {
		_ = os.RemoveAll(filepath.Join(c.dir, kind))
	}
	return removed, nil
}

// walk calls fn for every entry file of kinds.
func (c *FileCache) walk(kinds []string, fn func(kind, path string, info fs.FileInfo) error) error {
	for _, kind := range kindsOrAll(kinds) {
		root := filepath.Join(c.dir, kind)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			return fn(kind, path, info)
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// path maps key to <dir>/<kind>/<2 hex>/<62 hex>.json.
func (c *FileCache) path(key string) string {
	sum := Digest([]byte(key))
	return filepath.Join(c.dir, kindDir(key), sum[:2], sum[2:]+".json")
}

func readEntry(path string) (*fileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorrupt, path, err)
	}
	return &entry, nil
}

func kindDir(key string) string {
	if kind := KindOf(key); kind != "" {
		return kind
	}
	return otherKind
}

func kindsOrAll(kinds []string) []string {
	if len(kinds) > 0 {
		return kinds
	}
	return append(append([]string(nil), Kinds...), otherKind)
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
