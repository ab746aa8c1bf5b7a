package ngram

import (
	"math"

	"ngramlm/internal/domain"
)

// Trigram estimates P(w3 | w1,w2) = count(w1,w2,w3) / count(w1,w2). Context
// counts come from the bigram model it owns, which in turn owns a unigram.
type Trigram struct {
	bigram *Bigram
	table  *CountTable
}

// NewTrigram returns an untrained trigram model.
func NewTrigram(oovThreshold int) *Trigram {
	return &Trigram{bigram: NewBigram(oovThreshold)}
}

func (m *Trigram) Order() int { return 3 }

func (m *Trigram) Train(sentences []domain.Sentence) error {
	if m.table != nil {
		return ErrAlreadyTrained
	}
	if err := m.bigram.Train(sentences); err != nil {
		return err
	}
	table, err := Count(sentences, 3, m.bigram.Vocabulary())
	if err != nil {
		return err
	}
	m.table = table
	return nil
}

func (m *Trigram) Vocabulary() *Vocabulary { return m.bigram.Vocabulary() }

func (m *Trigram) Table(k int) *CountTable {
	if k == 3 {
		return m.table
	}
	return m.bigram.Table(k)
}

// Bigram returns the lower-order model used for context counts.
func (m *Trigram) Bigram() *Bigram { return m.bigram }

func (m *Trigram) Probability(ngram []string) (float64, error) {
	if m.table == nil {
		return 0, ErrUntrainedModel
	}
	if err := checkNgram(ngram, 3); err != nil {
		return 0, err
	}
	return m.prob(ngram[0], ngram[1], ngram[2]), nil
}

func (m *Trigram) prob(w1, w2, w3 string) float64 {
	vocab := m.bigram.Vocabulary()
	count := m.table.Get(vocab.Map(w1), vocab.Map(w2), vocab.Map(w3))
	return ratio(count, m.bigram.count(w1, w2))
}

// positionProb is the estimate used for sentence[i]. The first content token
// only has a start marker before it, so it is scored as the bigram
// count(<START>,w) over the number of start contexts rather than as a trigram.
func (m *Trigram) positionProb(sentence domain.Sentence, i int) (float64, bool) {
	if sentence[i-1] == domain.StartToken {
		return m.bigram.startProb(sentence[i]), true
	}
	if i < 2 {
		return 0, false
	}
	return m.prob(sentence[i-2], sentence[i-1], sentence[i]), true
}

func (m *Trigram) LogLikelihood(sentence domain.Sentence) (float64, error) {
	if m.table == nil {
		return 0, ErrUntrainedModel
	}
	var llp float64
	for i := 1; i < len(sentence); i++ {
		if sentence[i] == domain.StartToken {
			continue
		}
		p, scored := m.positionProb(sentence, i)
		if !scored {
			continue
		}
		if p == 0 {
			return math.Inf(-1), nil
		}
		llp += math.Log2(p)
	}
	return llp, nil
}
