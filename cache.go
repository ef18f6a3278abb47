// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package depengine

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// DependencyCache is the dependency cache (DC, §3/§4.4/§6): a persistent
// map from a DNEVR string to a single integer result (0 satisfied, 1
// unsatisfied). It is opened once per TransactionSet and consulted/updated
// by Unsatisfied.
type DependencyCache interface {
	// Get looks up dnevr, returning ok == false on a miss.
	Get(dnevr string) (result int, ok bool)
	// Put writes dnevr -> result. A returned error means the caller
	// should treat the cache as permanently unusable for the rest of
	// this run (§4.4 step 8, §7 "Cache I/O failure").
	Put(dnevr string, result int) error
	// Close releases any backing resources.
	Close() error
}

// dependsBucket is the single bucket the cache uses, named for the
// DEPENDS secondary index spec.md's external interface describes.
var dependsBucket = []byte("DEPENDS")

// boltDependencyCache is a DependencyCache backed by a BoltDB file,
// adapted from the teacher's boltCache (internal/gps/source_cache_bolt.go):
// same "open by name, get/put with a write cursor, degrade silently on I/O
// error" shape, repurposed from source-version metadata to DNEVR/result
// pairs.
type boltDependencyCache struct {
	db *bolt.DB
}

// OpenBoltDependencyCache opens (creating if needed) a BoltDB file at path
// as the backing store for a DependencyCache.
func OpenBoltDependencyCache(path string) (DependencyCache, error) {
	dir := filepath.Dir(path)
	if fi, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create dependency cache directory %s", dir)
		}
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to stat dependency cache directory %s", dir)
	} else if !fi.IsDir() {
		return nil, errors.Errorf("dependency cache path %s is not a directory", dir)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dependency cache file %q", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(dependsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize dependency cache bucket")
	}

	return &boltDependencyCache{db: db}, nil
}

func (c *boltDependencyCache) Get(dnevr string) (int, bool) {
	var result int
	var found bool

	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(dependsBucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(dnevr))
		if len(v) != 4 {
			return nil
		}
		result = int(int32(binary.LittleEndian.Uint32(v)))
		found = true
		return nil
	})

	return result, found
}

func (c *boltDependencyCache) Put(dnevr string, result int) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(result)))

	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(dependsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(dnevr), buf)
	})
}

func (c *boltDependencyCache) Close() error {
	return c.db.Close()
}

// memoryDependencyCache is a non-persistent DependencyCache used by tests
// and by callers that want write-through caching within a single run but
// no on-disk artifact. It never fails, so cache_enabled never flips false
// when using it.
type memoryDependencyCache struct {
	m map[string]int
}

// NewMemoryDependencyCache returns a DependencyCache backed by a plain map.
func NewMemoryDependencyCache() DependencyCache {
	return &memoryDependencyCache{m: make(map[string]int)}
}

func (c *memoryDependencyCache) Get(dnevr string) (int, bool) {
	v, ok := c.m[dnevr]
	return v, ok
}

func (c *memoryDependencyCache) Put(dnevr string, result int) error {
	c.m[dnevr] = result
	return nil
}

func (c *memoryDependencyCache) Close() error { return nil }
