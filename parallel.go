package gotara

import (
	"context"
	"runtime"
	"sync"
)

// ParallelCacheLookup performs cache lookups in parallel using goroutines,
// building keys with CacheKey(hash, dir, variant). Returns a map of hash to
// cached value, and the distinct cache misses in document order.
func ParallelCacheLookup(cache TranslationCache, nodes []TextNode, dir TranslationDirection, variant string) (map[string]string, []TextNode) {
	if cache == nil || len(nodes) == 0 {
		return make(map[string]string), nodes
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	unique := make(map[string]struct{})
	for _, node := range nodes {
		unique[node.Hash] = struct{}{}
	}

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup

	for hash := range unique {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(h, string(dir), variant)); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h}
			}
		}(hash)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	translations := make(map[string]string)
	missed := make(map[string]bool)
	for result := range results {
		if result.found {
			translations[result.hash] = result.value
		} else {
			missed[result.hash] = true
		}
	}

	var misses []TextNode
	for _, node := range nodes {
		if missed[node.Hash] {
			misses = append(misses, node)
			delete(missed, node.Hash)
		}
	}

	return translations, misses
}

// TranslateBatch translates texts concurrently with at most workers
// goroutines (GOMAXPROCS when workers <= 0). Results keep the input order.
// With DirectionAuto each text is detected on its own. The batch stops early
// and returns the context error if ctx is cancelled.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string, dir TranslationDirection, workers int) ([]string, error) {
	if !dir.Valid() {
		return nil, &DirectionError{Direction: string(dir)}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(texts) {
		workers = len(texts)
	}

	out := make([]string, len(texts))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// dir is valid, so Translate cannot fail
				out[i], _ = t.Translate(texts[i], dir)
			}
		}()
	}

	var err error
feed:
	for i := range texts {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}

// TranslateBatch translates texts with the built-in rules.
func TranslateBatch(ctx context.Context, texts []string, dir TranslationDirection, workers int) ([]string, error) {
	return defaultTranslator().TranslateBatch(ctx, texts, dir, workers)
}
