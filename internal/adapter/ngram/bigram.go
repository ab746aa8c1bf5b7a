package ngram

import (
	"math"

	"ngramlm/internal/domain"
)

// Bigram estimates P(w2 | w1) = count(w1,w2) / count(w1). Context counts come
// from the unigram model it owns.
type Bigram struct {
	unigram *Unigram
	table   *CountTable
}

// NewBigram returns an untrained bigram model.
func NewBigram(oovThreshold int) *Bigram {
	return &Bigram{unigram: NewUnigram(oovThreshold)}
}

func (m *Bigram) Order() int { return 2 }

func (m *Bigram) Train(sentences []domain.Sentence) error {
	if m.table != nil {
		return ErrAlreadyTrained
	}
	if err := m.unigram.Train(sentences); err != nil {
		return err
	}
	table, err := Count(sentences, 2, m.unigram.Vocabulary())
	if err != nil {
		return err
	}
	m.table = table
	return nil
}

func (m *Bigram) Vocabulary() *Vocabulary { return m.unigram.Vocabulary() }

func (m *Bigram) Table(k int) *CountTable {
	if k == 2 {
		return m.table
	}
	return m.unigram.Table(k)
}

// Unigram returns the lower-order model used for context counts.
func (m *Bigram) Unigram() *Unigram { return m.unigram }

func (m *Bigram) Probability(ngram []string) (float64, error) {
	if m.table == nil {
		return 0, ErrUntrainedModel
	}
	if err := checkNgram(ngram, 2); err != nil {
		return 0, err
	}
	return m.prob(ngram[0], ngram[1]), nil
}

func (m *Bigram) prob(w1, w2 string) float64 {
	vocab := m.unigram.Vocabulary()
	return ratio(m.table.Get(vocab.Map(w1), vocab.Map(w2)), m.unigram.count(w1))
}

// startProb is P(w | <START>) over start contexts. A sentence has one start
// context however many markers pad it, so marker-after-marker windows are
// not contexts.
func (m *Bigram) startProb(w string) float64 {
	contexts := m.unigram.count(domain.StartToken) - m.count(domain.StartToken, domain.StartToken)
	return ratio(m.count(domain.StartToken, w), contexts)
}

// count returns the mapped bigram count, used as the trigram context count.
func (m *Bigram) count(w1, w2 string) int {
	vocab := m.unigram.Vocabulary()
	return m.table.Get(vocab.Map(w1), vocab.Map(w2))
}

func (m *Bigram) LogLikelihood(sentence domain.Sentence) (float64, error) {
	if m.table == nil {
		return 0, ErrUntrainedModel
	}
	var llp float64
	for i := 1; i < len(sentence); i++ {
		if sentence[i] == domain.StartToken {
			continue
		}
		p := m.prob(sentence[i-1], sentence[i])
		if p == 0 {
			return math.Inf(-1), nil
		}
		llp += math.Log2(p)
	}
	return llp, nil
}
