package ngram

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"ngramlm/internal/domain"
)

// Scorer returns the log2 likelihood of one framed sentence.
type Scorer interface {
	LogLikelihood(sentence domain.Sentence) (float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(sentence domain.Sentence) (float64, error)

func (f ScorerFunc) LogLikelihood(sentence domain.Sentence) (float64, error) {
	return f(sentence)
}

// Evaluation is the outcome of scoring a dataset.
type Evaluation struct {
	Perplexity    float64
	LogLikelihood float64
	Tokens        int
	Sentences     int
}

// EvalOption configures Evaluate.
type EvalOption func(*evalConfig)

type evalConfig struct {
	workers int
}

// WithWorkers scores the dataset in n contiguous shards concurrently. Partial
// sums are reduced in shard order, so the result only depends on n.
func WithWorkers(n int) EvalOption {
	return func(c *evalConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

var errZeroProbability = errors.New("zero probability")

// Perplexity returns 2^(-LLP/M) for the dataset, where M counts every token
// except one start marker per sentence. A sentence with a zero-probability
// position makes the whole dataset +Inf.
func Perplexity(s Scorer, sentences []domain.Sentence, opts ...EvalOption) (float64, error) {
	eval, err := Evaluate(s, sentences, opts...)
	if err != nil {
		return 0, err
	}
	return eval.Perplexity, nil
}

// Evaluate scores every sentence and aggregates the perplexity.
func Evaluate(s Scorer, sentences []domain.Sentence, opts ...EvalOption) (Evaluation, error) {
	cfg := evalConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	eval := Evaluation{Sentences: len(sentences)}
	for _, sentence := range sentences {
		if len(sentence) > 1 {
			eval.Tokens += len(sentence) - 1
		}
	}
	if eval.Tokens == 0 {
		return eval, fmt.Errorf("%w: dataset has no scored tokens", ErrInvalidInput)
	}

	llp, err := sumLogLikelihood(s, sentences, cfg.workers)
	switch {
	case errors.Is(err, errZeroProbability):
		eval.LogLikelihood = math.Inf(-1)
		eval.Perplexity = math.Inf(1)
		return eval, nil
	case err != nil:
		return eval, err
	}

	eval.LogLikelihood = llp
	eval.Perplexity = math.Exp2(-llp / float64(eval.Tokens))
	return eval, nil
}

func sumLogLikelihood(s Scorer, sentences []domain.Sentence, workers int) (float64, error) {
	if workers <= 1 || len(sentences) < 2*workers {
		return scoreShard(context.Background(), s, sentences)
	}

	partial := make([]float64, workers)
	size := (len(sentences) + workers - 1) / workers
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		lo := w * size
		hi := min(lo+size, len(sentences))
		if lo >= hi {
			break
		}
		w := w
		g.Go(func() error {
			llp, err := scoreShard(ctx, s, sentences[lo:hi])
			partial[w] = llp
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var llp float64
	for _, p := range partial {
		llp += p
	}
	return llp, nil
}

func scoreShard(ctx context.Context, s Scorer, sentences []domain.Sentence) (float64, error) {
	var llp float64
	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		l, err := s.LogLikelihood(sentence)
		if err != nil {
			return 0, err
		}
		if math.IsInf(l, -1) {
			return 0, errZeroProbability
		}
		llp += l
	}
	return llp, nil
}
