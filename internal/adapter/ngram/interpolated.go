package ngram

import (
	"fmt"
	"math"

	"ngramlm/internal/domain"
)

// DefaultTolerance bounds how far interpolation weights may drift from
// summing to 1.
const DefaultTolerance = 1e-5

// Weights are the unigram, bigram and trigram mixture coefficients.
type Weights struct {
	Unigram float64 `json:"unigram"`
	Bigram  float64 `json:"bigram"`
	Trigram float64 `json:"trigram"`
}

// Slice returns the weights as [lam1, lam2, lam3].
func (w Weights) Slice() []float64 {
	return []float64{w.Unigram, w.Bigram, w.Trigram}
}

// Validate checks that every weight is in [0,1] and that they sum to 1
// within tolerance.
func (w Weights) Validate(tolerance float64) error {
	for i, lam := range w.Slice() {
		if lam < 0 || lam > 1 || math.IsNaN(lam) {
			return fmt.Errorf("%w: lam%d=%g is outside [0,1]", ErrInvalidWeights, i+1, lam)
		}
	}
	sum := w.Unigram + w.Bigram + w.Trigram
	if math.Abs(sum-1) > tolerance {
		return fmt.Errorf("%w: weights sum to %g", ErrInvalidWeights, sum)
	}
	return nil
}

// Interpolated mixes independently trained unigram, bigram and trigram models.
type Interpolated struct {
	unigram   *Unigram
	bigram    *Bigram
	trigram   *Trigram
	tolerance float64
	trained   bool
}

// NewInterpolated returns an untrained interpolated model. A tolerance <= 0
// selects DefaultTolerance.
func NewInterpolated(oovThreshold int, tolerance float64) *Interpolated {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Interpolated{
		unigram:   NewUnigram(oovThreshold),
		bigram:    NewBigram(oovThreshold),
		trigram:   NewTrigram(oovThreshold),
		tolerance: tolerance,
	}
}

// Train trains the three component models on the same sentences.
func (m *Interpolated) Train(sentences []domain.Sentence) error {
	if m.trained {
		return ErrAlreadyTrained
	}
	for _, component := range m.Components() {
		if err := component.Train(sentences); err != nil {
			return err
		}
	}
	m.trained = true
	return nil
}

// Components returns the unigram, bigram and trigram models in that order.
func (m *Interpolated) Components() []Model {
	return []Model{m.unigram, m.bigram, m.trigram}
}

// Probability returns the mixed estimate for a trigram query.
func (m *Interpolated) Probability(w Weights, ngram []string) (float64, error) {
	if err := w.Validate(m.tolerance); err != nil {
		return 0, err
	}
	if !m.trained {
		return 0, ErrUntrainedModel
	}
	if err := checkNgram(ngram, 3); err != nil {
		return 0, err
	}
	return w.Unigram*m.unigram.prob(ngram[2]) +
		w.Bigram*m.bigram.prob(ngram[1], ngram[2]) +
		w.Trigram*m.trigram.prob(ngram[0], ngram[1], ngram[2]), nil
}

// positionProb mixes the three estimates for sentence[i]. For the first
// content token the trigram term is replaced by the bigram (<START>,w) term.
func (m *Interpolated) positionProb(w Weights, sentence domain.Sentence, i int) (float64, bool) {
	word := sentence[i]
	if sentence[i-1] == domain.StartToken {
		pb := m.bigram.startProb(word)
		return w.Unigram*m.unigram.prob(word) + w.Bigram*pb + w.Trigram*pb, true
	}
	if i < 2 {
		return 0, false
	}
	return w.Unigram*m.unigram.prob(word) +
		w.Bigram*m.bigram.prob(sentence[i-1], word) +
		w.Trigram*m.trigram.prob(sentence[i-2], sentence[i-1], word), true
}

// LogLikelihood sums log2 of the mixed probability over the scored positions.
// Positions whose mixed probability is exactly 0 contribute nothing.
func (m *Interpolated) LogLikelihood(w Weights, sentence domain.Sentence) (float64, error) {
	if !m.trained {
		return 0, ErrUntrainedModel
	}
	var llp float64
	for i := 1; i < len(sentence); i++ {
		if sentence[i] == domain.StartToken {
			continue
		}
		p, scored := m.positionProb(w, sentence, i)
		if !scored || p <= 0 {
			continue
		}
		llp += math.Log2(p)
	}
	return llp, nil
}

// Scorer binds a set of weights, for use with Evaluate.
func (m *Interpolated) Scorer(w Weights) Scorer {
	return ScorerFunc(func(sentence domain.Sentence) (float64, error) {
		return m.LogLikelihood(w, sentence)
	})
}

// Interpolate validates the weights and returns the perplexity of the
// sentences under the mixture.
func (m *Interpolated) Interpolate(lam1, lam2, lam3 float64, sentences []domain.Sentence, opts ...EvalOption) (float64, error) {
	eval, err := m.Evaluate(Weights{Unigram: lam1, Bigram: lam2, Trigram: lam3}, sentences, opts...)
	if err != nil {
		return 0, err
	}
	return eval.Perplexity, nil
}

// Evaluate is Interpolate with the full evaluation detail.
func (m *Interpolated) Evaluate(w Weights, sentences []domain.Sentence, opts ...EvalOption) (Evaluation, error) {
	scorer, err := m.Bind(w)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(scorer, sentences, opts...)
}

// Bind checks the weights, then the training state, and returns the Scorer
// for w.
func (m *Interpolated) Bind(w Weights) (Scorer, error) {
	if err := w.Validate(m.tolerance); err != nil {
		return nil, err
	}
	if !m.trained {
		return nil, ErrUntrainedModel
	}
	return m.Scorer(w), nil
}

// Stats summarizes the trigram component, which owns all three orders.
func (m *Interpolated) Stats() domain.Stats {
	return Describe(m.trigram)
}
