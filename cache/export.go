package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/ZaguanLabs/gotara"
)

// FormatVersion identifies the layout written by Exporter.
// Version 2 keys carry the rule table variant; version 1 keys do not and
// cannot be imported.
const FormatVersion = "gotara-cache/2"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Count      int               `json:"count"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one cached translation. Direction and Variant repeat the
// key's components so dumps can be read and filtered without splitting keys.
type ExportEntry struct {
	Key       string `json:"key"`
	Direction string `json:"direction,omitempty"`
	Variant   string `json:"variant,omitempty"`
	Value     string `json:"value"`
}

// Exporter writes the translations held by a cache as JSON.
type Exporter struct {
	cache TranslationCache
	now   func() time.Time
}

// NewExporter creates a new cache exporter.
func NewExporter(cache TranslationCache) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes the cache contents to w. The cache must implement
// ExportableCache.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	entries, err := e.entries()
	if err != nil {
		return fmt.Errorf("getting cache entries: %w", err)
	}

	export := ExportFormat{
		Version:    FormatVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := e.Export(f, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// entries lists the cache grouped by direction, then sorted by key.
// Variants sort inside the key, after the hash, so they do not group.
func (e *Exporter) entries() ([]ExportEntry, error) {
	ec, ok := e.cache.(ExportableCache)
	if !ok {
		return nil, fmt.Errorf("cache type %T does not support export", e.cache)
	}

	data, err := ec.Entries()
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entry := ExportEntry{Key: key, Value: value}
		if parts, ok := gotara.ParseCacheKey(key); ok {
			entry.Direction = string(parts.Direction)
			entry.Variant = parts.Variant
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Direction != entries[j].Direction {
			return entries[i].Direction < entries[j].Direction
		}
		return entries[i].Key < entries[j].Key
	})

	return entries, nil
}

// Importer loads an export into a cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads an export from r and stores its entries. Entries whose key
// was not built by gotara.CacheKey, or whose direction or variant disagrees
// with the key, are skipped.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if export.Version != "" && export.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported export version %q", export.Version)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		parts, ok := gotara.ParseCacheKey(entry.Key)
		if !ok ||
			(entry.Direction != "" && entry.Direction != string(parts.Direction)) ||
			(entry.Variant != "" && entry.Variant != parts.Variant) {
			result.Skipped++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
	Failed   int
}
