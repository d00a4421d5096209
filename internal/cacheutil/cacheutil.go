// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cacheutil keeps backend responses on disk between invocations.
package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// DefaultMaxAge is how long an entry is served when SMCTL_CACHE_MAX_AGE is
// not set.
const DefaultMaxAge = 24 * time.Hour

// Store is a directory of entries keyed by hashed clear-text keys.
type Store struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// New returns a Store rooted at dir. Entries older than maxAge are ignored.
func New(dir string, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{dir: dir, maxAge: maxAge, now: time.Now}
}

// Dir resolves the base cache directory.
// Precedence:
//  1. SMCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/smctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("SMCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "smctl"), true
	}
	return "", false
}

// Enabled returns true only if SMCTL_CACHE is "1" or "true". Catalog data
// changes when datasets are published, so caching is opt-in.
func Enabled() bool {
	v := os.Getenv("SMCTL_CACHE")
	return v == "1" || v == "true"
}

// Default returns the Store configured by the environment, or nil if
// caching is disabled.
func Default(maxAge time.Duration) *Store {
	if !Enabled() {
		return nil
	}
	dir, ok := Dir()
	if !ok {
		return nil
	}
	return New(dir, maxAge)
}

// Path returns where the entry for key lives.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, encodeKey(key))
}

// Get returns the entry for key if it exists and is fresh.
func (s *Store) Get(key string) ([]byte, bool) {
	p := s.Path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if s.now().Sub(info.ModTime()) > s.maxAge {
		log.Debugf("cache entry %s is stale", p)
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores data for key, creating the directory as needed.
func (s *Store) Put(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.Path(key), data, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Purge removes stale entries, or every entry if all is set. It returns the
// number of files removed.
func (s *Store) Purge(all bool) (int, error) {
	removed := 0
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !all && s.now().Sub(info.ModTime()) <= s.maxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		log.Debugf("removed cache file %s", path)
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// encodeKey hashes k and returns the hex string.
func encodeKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:])
}
