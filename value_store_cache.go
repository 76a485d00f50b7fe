package vase

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var cacheBucketName = []byte("vase")

// LoadCached behaves like Load, but consults a bbolt database at
// cachePath first. The cache key is derived from filename's modification
// time and size, not its contents, so an edited map with a stale mtime
// will still be re-parsed correctly on the next process restart that
// picks up the new mtime. This is a performance convenience layered on
// top of Load: it changes nothing about ValueStore's correctness
// invariants (SPEC_FULL.md §2.1), and any cache error simply falls
// through to a normal Load.
func (s *ValueStore) LoadCached(filename, cachePath string) bool {
	if cachePath == "" {
		return s.Load(filename)
	}

	info, err := os.Stat(filename)
	if err != nil {
		s.log.Warnf("vase: %v", errors.Wrapf(err, "failed to stat VASE map %q", filename))
		s.mu.Lock()
		s.publishLocked(nil, "")
		s.mu.Unlock()
		return false
	}
	key := cacheKey(filename, info)

	db, err := bolt.Open(cachePath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		s.log.Warnf("vase: %v", errors.Wrapf(err, "failed to open VASE cache %q, falling back", cachePath))
		return s.Load(filename)
	}
	defer db.Close()

	if store, ok := readCache(db, key); ok {
		s.mu.Lock()
		s.publishLocked(store, filename)
		s.mu.Unlock()
		s.log.Infof("vase: loaded VASE map %q from cache %q", filename, cachePath)
		return true
	}

	if !s.Load(filename) {
		return false
	}

	s.mu.Lock()
	store := s.snapshotLocked()
	s.mu.Unlock()
	if err := writeCache(db, key, store); err != nil {
		s.log.Warnf("vase: %v", errors.Wrapf(err, "failed to write VASE cache %q", cachePath))
	}
	return true
}

// snapshotLocked returns the currently published store map. Callers must
// hold s.mu (or otherwise know no concurrent Load can race the read).
func (s *ValueStore) snapshotLocked() map[string]ValueBundle {
	m := s.data.Load()
	if m == nil {
		return nil
	}
	return *m
}

func cacheKey(filename string, info os.FileInfo) []byte {
	h := sha256.New()
	h.Write([]byte(filename))
	fmt.Fprintf(h, ":%d:%d", info.ModTime().UnixNano(), info.Size())
	return h.Sum(nil)
}

func readCache(db *bolt.DB, key []byte) (map[string]ValueBundle, bool) {
	var store map[string]ValueBundle
	found := false
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(cacheBucketName)
		if bucket == nil {
			return nil
		}
		data := bucket.Get(key)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &store)
	})
	if err != nil || !found {
		return nil, false
	}
	return store, true
}

func writeCache(db *bolt.DB, key []byte, store map[string]ValueBundle) error {
	data, err := json.Marshal(store)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(cacheBucketName)
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}
