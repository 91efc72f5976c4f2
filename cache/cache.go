// Package cache stores finished translations keyed by gotara.CacheKey, so a
// text already rewritten in one direction is never run through the rules
// again. Every cache here is safe for concurrent use.
package cache

import "github.com/ZaguanLabs/gotara"

// TranslationCache is the interface the Translator consumes.
type TranslationCache = gotara.TranslationCache

// ExportableCache is a cache that can list its live entries.
type ExportableCache interface {
	TranslationCache

	// Entries returns all non-expired entries keyed by cache key.
	Entries() (map[string]string, error)
}

// Purger is implemented by caches whose expired entries linger until they
// are removed explicitly.
type Purger interface {
	Purge() (int64, error)
}

var _ Purger = (*SQLiteCache)(nil)
