package ngram

import (
	"math"

	"ngramlm/internal/domain"
)

// Unigram estimates P(w) as the relative training frequency of w.
type Unigram struct {
	oovThreshold int
	vocab        *Vocabulary
	table        *CountTable
}

// NewUnigram returns an untrained unigram model.
func NewUnigram(oovThreshold int) *Unigram {
	return &Unigram{oovThreshold: oovThreshold}
}

func (m *Unigram) Order() int { return 1 }

func (m *Unigram) Train(sentences []domain.Sentence) error {
	if m.vocab != nil {
		return ErrAlreadyTrained
	}
	vocab := BuildVocabulary(sentences, m.oovThreshold)
	table, err := Count(sentences, 1, vocab)
	if err != nil {
		return err
	}
	m.vocab, m.table = vocab, table
	return nil
}

func (m *Unigram) Vocabulary() *Vocabulary { return m.vocab }

func (m *Unigram) Table(k int) *CountTable {
	if k == 1 {
		return m.table
	}
	return nil
}

func (m *Unigram) Probability(ngram []string) (float64, error) {
	if m.vocab == nil {
		return 0, ErrUntrainedModel
	}
	if err := checkNgram(ngram, 1); err != nil {
		return 0, err
	}
	return m.prob(ngram[0]), nil
}

// prob divides the training frequency of word by the number of non-start
// training tokens. Unknown words take the <UNK> frequency. The start marker
// is never predicted.
func (m *Unigram) prob(word string) float64 {
	if word == domain.StartToken {
		return 0
	}
	return ratio(m.vocab.Count(word), m.vocab.Total())
}

// count returns the order-1 window count of the mapped token, start markers
// included. Higher orders use it as their context count.
func (m *Unigram) count(word string) int {
	return m.table.Get(m.vocab.Map(word))
}

func (m *Unigram) LogLikelihood(sentence domain.Sentence) (float64, error) {
	if m.vocab == nil {
		return 0, ErrUntrainedModel
	}
	var llp float64
	for _, word := range sentence {
		if word == domain.StartToken {
			continue
		}
		p := m.prob(word)
		if p == 0 {
			return math.Inf(-1), nil
		}
		llp += math.Log2(p)
	}
	return llp, nil
}
