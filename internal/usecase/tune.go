package usecase

import (
	"fmt"
	"math"

	"ngramlm/config"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/domain"
	"ngramlm/internal/port"
)

// TuneUseCase grid-searches interpolation weights on a held-out split.
type TuneUseCase struct {
	eval *EvaluateUseCase
}

// NewTuneUseCase creates a new tune use case.
func NewTuneUseCase(loader *Loader, runs port.RunStore, cfg *config.Config) *TuneUseCase {
	return &TuneUseCase{eval: NewEvaluateUseCase(loader, runs, cfg)}
}

// Candidate is one point of the weight grid.
type Candidate struct {
	Weights    ngram.Weights
	Perplexity float64
}

// TuneResult contains every evaluated candidate and the best one.
type TuneResult struct {
	Run        domain.Run
	Best       Candidate
	Candidates []Candidate
}

// Grid returns the weight triples on the probability simplex whose first two
// components are multiples of step. The trigram weight takes the remainder.
func Grid(step float64) []ngram.Weights {
	if step <= 0 || step > 1 {
		return nil
	}
	n := int(math.Floor(1/step + 1e-9))

	var grid []ngram.Weights
	for i := 0; i <= n; i++ {
		for j := 0; i+j <= n; j++ {
			l1 := round(float64(i) * step)
			l2 := round(float64(j) * step)
			grid = append(grid, ngram.Weights{
				Unigram: l1,
				Bigram:  l2,
				Trigram: round(math.Max(1-l1-l2, 0)),
			})
		}
	}
	return grid
}

func round(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}

// Tune evaluates every grid point on the split. Ties keep the earlier
// candidate.
func (u *TuneUseCase) Tune(split domain.Split, step float64, progress ProgressFunc) (*TuneResult, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}
	cfg := u.eval.cfg
	grid := Grid(step)
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: tune step must be in (0,1], got %g", ngram.ErrInvalidInput, step)
	}

	model, err := Train(u.eval.loader, ModelInterpolate, cfg.Model.OOVThreshold, cfg.Interpolation.Tolerance)
	if err != nil {
		return nil, err
	}
	model.WithCache(cfg.Eval.CacheSize)

	sentences, err := u.eval.loader.Sentences(split, model.Order)
	if err != nil {
		return nil, err
	}

	result := &TuneResult{Candidates: make([]Candidate, 0, len(grid))}
	var bestEval ngram.Evaluation
	for i, w := range grid {
		progress(i, len(grid), fmt.Sprintf("%.2f/%.2f/%.2f", w.Unigram, w.Bigram, w.Trigram))

		eval, err := u.eval.score(model, w.Slice(), sentences)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate weights %v: %w", w.Slice(), err)
		}
		c := Candidate{Weights: w, Perplexity: eval.Perplexity}
		result.Candidates = append(result.Candidates, c)
		if i == 0 || c.Perplexity < result.Best.Perplexity {
			result.Best = c
			bestEval = eval
		}
		log.Debugf("weights %v: perplexity %g", w.Slice(), eval.Perplexity)
	}
	progress(len(grid), len(grid), "done")

	result.Run = u.eval.newRun("tune", model, split, bestEval)
	result.Run.Lambdas = result.Best.Weights.Slice()
	log.Infof("best weights on %s: %v (perplexity %g)", split, result.Run.Lambdas, result.Best.Perplexity)

	if err := u.eval.record(result.Run); err != nil {
		return nil, err
	}
	return result, nil
}
