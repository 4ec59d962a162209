// Package cache persists date-bucket snapshots in a local bbolt
// database. The engine hydrates from it at startup so the last known
// state is visible before the first network read, and writes through to
// it after every authoritative replace.
package cache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ethan-dean/todue/internal/todo"
)

const (
	// cacheDirPerm is the permission mode for the cache directory.
	cacheDirPerm = fs.FileMode(0o700)

	// cacheFilePerm is the permission mode for the database file.
	cacheFilePerm = fs.FileMode(0o600)

	// cacheOpenTimeout is the maximum time to wait for the bolt
	// database lock, in case another todue process holds it.
	cacheOpenTimeout = 5 * time.Second
)

var bucketsBucket = []byte("buckets")

// Cache wraps a bbolt database of bucket snapshots keyed by date.
type Cache struct {
	db *bolt.DB
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, cacheFilePerm, &bolt.Options{Timeout: cacheOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache db: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveBucket stores the snapshot for dateKey, overwriting any previous
// one. An empty (but loaded) bucket is stored as an empty array so it
// remains distinguishable from an absent key.
func (c *Cache) SaveBucket(dateKey string, items []todo.Todo) error {
	if items == nil {
		items = []todo.Todo{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding bucket %s: %w", dateKey, err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketsBucket).Put([]byte(dateKey), payload)
	})
	if err != nil {
		return fmt.Errorf("writing bucket %s: %w", dateKey, err)
	}

	return nil
}

// LoadBucket returns the cached snapshot for dateKey, and whether one
// exists.
func (c *Cache) LoadBucket(dateKey string) ([]todo.Todo, bool, error) {
	var payload []byte

	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketsBucket).Get([]byte(dateKey)); v != nil {
			payload = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading bucket %s: %w", dateKey, err)
	}

	if payload == nil {
		return nil, false, nil
	}

	var items []todo.Todo
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decoding bucket %s: %w", dateKey, err)
	}

	return items, true, nil
}

// DeleteBucket removes dateKey's snapshot.
func (c *Cache) DeleteBucket(dateKey string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketsBucket).Delete([]byte(dateKey))
	})
	if err != nil {
		return fmt.Errorf("deleting bucket %s: %w", dateKey, err)
	}

	return nil
}

// Dates returns every cached date key in ascending order.
func (c *Cache) Dates() ([]string, error) {
	var keys []string

	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing cached dates: %w", err)
	}

	return keys, nil
}

// DefaultPath returns ~/.todue/cache.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".todue", "cache.db"), nil
}
