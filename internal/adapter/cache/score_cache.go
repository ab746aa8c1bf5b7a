package cache

import (
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"ngramlm/internal/domain"
)

// Scorer is the subset of ngram.Scorer the cache wraps.
type Scorer interface {
	LogLikelihood(sentence domain.Sentence) (float64, error)
}

// CachedScorer memoizes per-sentence log-likelihoods. Models are immutable
// after training, so entries never go stale.
type CachedScorer struct {
	scorer Scorer
	cache  *lru.Cache[string, float64]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedScorer wraps scorer with an LRU of at most size sentences.
func NewCachedScorer(scorer Scorer, size int) (*CachedScorer, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedScorer{scorer: scorer, cache: c}, nil
}

func cacheKey(sentence domain.Sentence) string {
	return strings.Join(sentence, "\x00")
}

func (c *CachedScorer) LogLikelihood(sentence domain.Sentence) (float64, error) {
	key := cacheKey(sentence)
	if llp, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return llp, nil
	}
	c.misses.Add(1)

	llp, err := c.scorer.LogLikelihood(sentence)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, llp)
	return llp, nil
}

// Stats returns cache hits and misses so far.
func (c *CachedScorer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *CachedScorer) Size() int {
	return c.cache.Len()
}
