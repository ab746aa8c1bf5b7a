package ngram

import (
	"fmt"

	"ngramlm/internal/domain"
)

// Model is a trained single-order n-gram estimator.
type Model interface {
	// Order is the n-gram length the model conditions on.
	Order() int

	// Train counts the training sentences. A model can be trained once.
	Train(sentences []domain.Sentence) error

	// Probability returns P(last | preceding) for an n-gram of length Order.
	Probability(ngram []string) (float64, error)

	// LogLikelihood sums log2 probabilities over the scored positions of a
	// sentence. It is -Inf when any scored position has probability 0.
	LogLikelihood(sentence domain.Sentence) (float64, error)

	// Vocabulary returns the vocabulary fixed at training time.
	Vocabulary() *Vocabulary

	// Table returns the count table of order k, or nil if the model does not
	// own one.
	Table(k int) *CountTable
}

// TrainModel builds and trains a model of the requested order.
func TrainModel(order int, sentences []domain.Sentence, oovThreshold int) (Model, error) {
	m, err := NewModel(order, oovThreshold)
	if err != nil {
		return nil, err
	}
	if err := m.Train(sentences); err != nil {
		return nil, err
	}
	return m, nil
}

// NewModel returns an untrained model of the requested order.
func NewModel(order int, oovThreshold int) (Model, error) {
	switch order {
	case 1:
		return NewUnigram(oovThreshold), nil
	case 2:
		return NewBigram(oovThreshold), nil
	case 3:
		return NewTrigram(oovThreshold), nil
	default:
		return nil, fmt.Errorf("%w: unsupported order %d", ErrInvalidInput, order)
	}
}

// Describe summarizes a trained model.
func Describe(m Model) domain.Stats {
	stats := domain.Stats{Order: m.Order()}
	vocab := m.Vocabulary()
	if vocab == nil {
		return stats
	}
	stats.OOVThreshold = vocab.Threshold()
	stats.VocabSize = vocab.Size()
	stats.UnknownCount = vocab.Count(domain.UnknownToken)
	for k := 1; k <= m.Order(); k++ {
		if t := m.Table(k); t != nil {
			stats.UniqueNgrams = append(stats.UniqueNgrams, t.Len())
		}
	}
	return stats
}

func checkNgram(ngram []string, order int) error {
	if len(ngram) != order {
		return fmt.Errorf("%w: expected %d tokens, got %d", ErrInvalidInput, order, len(ngram))
	}
	return nil
}

// ratio divides two counts, returning 0 for an empty denominator.
func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
