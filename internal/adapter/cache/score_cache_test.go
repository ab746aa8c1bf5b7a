package cache

import (
	"errors"
	"testing"

	"ngramlm/internal/domain"
)

type countingScorer struct {
	calls int
	err   error
}

func (s *countingScorer) LogLikelihood(sentence domain.Sentence) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return -float64(len(sentence)), nil
}

func TestCachedScorer_Hits(t *testing.T) {
	inner := &countingScorer{}
	c, err := NewCachedScorer(inner, 8)
	if err != nil {
		t.Fatal(err)
	}

	s := domain.Sentence{domain.StartToken, "HDTV", ".", domain.StopToken}
	for i := 0; i < 3; i++ {
		llp, err := c.LogLikelihood(s)
		if err != nil {
			t.Fatal(err)
		}
		if llp != -4 {
			t.Errorf("expected -4, got %f", llp)
		}
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 underlying call, got %d", inner.calls)
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}
}

func TestCachedScorer_DistinctSentences(t *testing.T) {
	inner := &countingScorer{}
	c, _ := NewCachedScorer(inner, 8)

	// Joined naively these two would collide.
	c.LogLikelihood(domain.Sentence{"a b", "c"})
	c.LogLikelihood(domain.Sentence{"a", "b c"})
	if inner.calls != 2 {
		t.Errorf("expected 2 underlying calls, got %d", inner.calls)
	}
}

func TestCachedScorer_Eviction(t *testing.T) {
	inner := &countingScorer{}
	c, _ := NewCachedScorer(inner, 2)

	for _, w := range []string{"a", "b", "c"} {
		c.LogLikelihood(domain.Sentence{w})
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}

	c.LogLikelihood(domain.Sentence{"a"})
	if inner.calls != 4 {
		t.Errorf("expected evicted entry to be recomputed, got %d calls", inner.calls)
	}
}

func TestCachedScorer_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	inner := &countingScorer{err: boom}
	c, _ := NewCachedScorer(inner, 8)

	for i := 0; i < 2; i++ {
		if _, err := c.LogLikelihood(domain.Sentence{"x"}); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("expected errors to bypass the cache, got %d calls", inner.calls)
	}
}
