package usecase

import (
	"fmt"

	"ngramlm/internal/adapter/cache"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/domain"
)

// Model names accepted by the use cases.
const (
	ModelUnigram     = "unigram"
	ModelBigram      = "bigram"
	ModelTrigram     = "trigram"
	ModelInterpolate = "interpolate"
)

// OrderOf returns the framing order for a model name.
func OrderOf(name string) (int, error) {
	switch name {
	case ModelUnigram:
		return 1, nil
	case ModelBigram:
		return 2, nil
	case ModelTrigram, ModelInterpolate:
		return 3, nil
	default:
		return 0, fmt.Errorf("%w: unknown model %q", ngram.ErrInvalidInput, name)
	}
}

// TrainedModel is a model fitted on the training split.
type TrainedModel struct {
	Name      string
	Order     int
	Sentences int

	single       ngram.Model
	interpolated *ngram.Interpolated
	cacheSize    int
	caches       []*cache.CachedScorer
}

// Train loads the training split and fits the named model.
func Train(loader *Loader, name string, oovThreshold int, tolerance float64) (*TrainedModel, error) {
	order, err := OrderOf(name)
	if err != nil {
		return nil, err
	}

	sentences, err := loader.Sentences(domain.SplitTrain, order)
	if err != nil {
		return nil, err
	}
	return TrainOn(sentences, name, oovThreshold, tolerance)
}

// TrainOn fits the named model on already framed sentences.
func TrainOn(sentences []domain.Sentence, name string, oovThreshold int, tolerance float64) (*TrainedModel, error) {
	order, err := OrderOf(name)
	if err != nil {
		return nil, err
	}

	t := &TrainedModel{Name: name, Order: order, Sentences: len(sentences)}
	if name == ModelInterpolate {
		t.interpolated = ngram.NewInterpolated(oovThreshold, tolerance)
		err = t.interpolated.Train(sentences)
	} else {
		t.single, err = ngram.TrainModel(order, sentences, oovThreshold)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to train %s model: %w", name, err)
	}

	log.Infof("trained %s model on %d sentences", name, len(sentences))
	return t, nil
}

// WithCache makes subsequent scorers memoize sentence log-likelihoods in an
// LRU of the given size. size <= 0 disables caching.
func (t *TrainedModel) WithCache(size int) *TrainedModel {
	t.cacheSize = size
	return t
}

// Interpolated reports whether the model mixes weights.
func (t *TrainedModel) Interpolated() bool {
	return t.interpolated != nil
}

// Scorer returns the sentence scorer. lambdas are required for the
// interpolated model and ignored otherwise.
func (t *TrainedModel) Scorer(lambdas []float64) (ngram.Scorer, error) {
	var scorer ngram.Scorer = t.single
	if t.interpolated != nil {
		w, err := weightsOf(lambdas)
		if err != nil {
			return nil, err
		}
		scorer, err = t.interpolated.Bind(w)
		if err != nil {
			return nil, err
		}
	}

	if t.cacheSize <= 0 {
		return scorer, nil
	}
	cached, err := cache.NewCachedScorer(scorer, t.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create score cache: %w", err)
	}
	t.caches = append(t.caches, cached)
	return cached, nil
}

// CacheStats sums hits and misses over every cached scorer handed out.
func (t *TrainedModel) CacheStats() (hits, misses int64) {
	for _, c := range t.caches {
		h, m := c.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Stats summarizes the vocabulary, count tables and training set size.
func (t *TrainedModel) Stats() domain.Stats {
	var stats domain.Stats
	if t.interpolated != nil {
		stats = t.interpolated.Stats()
	} else {
		stats = ngram.Describe(t.single)
	}
	stats.Sentences = t.Sentences
	return stats
}

func weightsOf(lambdas []float64) (ngram.Weights, error) {
	if len(lambdas) != 3 {
		return ngram.Weights{}, fmt.Errorf("%w: need 3 lambdas, got %d", ngram.ErrInvalidWeights, len(lambdas))
	}
	return ngram.Weights{Unigram: lambdas[0], Bigram: lambdas[1], Trigram: lambdas[2]}, nil
}
