package usecase

import (
	"ngramlm/config"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/domain"
)

// ScoreUseCase computes the perplexity of ad-hoc sentences.
type ScoreUseCase struct {
	loader *Loader
	cfg    *config.Config
}

// NewScoreUseCase creates a new score use case.
func NewScoreUseCase(loader *Loader, cfg *config.Config) *ScoreUseCase {
	return &ScoreUseCase{loader: loader, cfg: cfg}
}

// SentenceScore is the result for one input sentence.
type SentenceScore struct {
	Text          string
	Tokens        domain.Sentence
	LogLikelihood float64
	Perplexity    float64
}

// Score trains the named model and scores each text as its own dataset.
func (u *ScoreUseCase) Score(modelName string, lambdas []float64, texts []string) ([]SentenceScore, error) {
	if lambdas == nil {
		lambdas = u.cfg.Interpolation.Lambdas
	}
	model, err := Train(u.loader, modelName, u.cfg.Model.OOVThreshold, u.cfg.Interpolation.Tolerance)
	if err != nil {
		return nil, err
	}
	scorer, err := model.Scorer(lambdas)
	if err != nil {
		return nil, err
	}

	scores := make([]SentenceScore, 0, len(texts))
	for _, text := range texts {
		sentence := u.loader.Frame([]string{text}, model.Order)[0]
		eval, err := ngram.Evaluate(scorer, []domain.Sentence{sentence})
		if err != nil {
			return nil, err
		}
		scores = append(scores, SentenceScore{
			Text:          text,
			Tokens:        sentence,
			LogLikelihood: eval.LogLikelihood,
			Perplexity:    eval.Perplexity,
		})
	}
	return scores, nil
}
