package usecase

import (
	"ngramlm/config"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/domain"
)

// VocabUseCase reports on the training vocabulary.
type VocabUseCase struct {
	loader *Loader
	cfg    *config.Config
}

// NewVocabUseCase creates a new vocab use case.
func NewVocabUseCase(loader *Loader, cfg *config.Config) *VocabUseCase {
	return &VocabUseCase{loader: loader, cfg: cfg}
}

// VocabResult summarizes the vocabulary built from the training split.
type VocabResult struct {
	Sentences    int                 `json:"sentences"`
	Size         int                 `json:"size"`
	Total        int                 `json:"total"`
	Threshold    int                 `json:"oov_threshold"`
	Folded       int                 `json:"folded"`
	UnknownCount int                 `json:"unknown_count"`
	Top          []domain.TokenCount `json:"top"`
}

// Vocab builds the vocabulary and returns the top most frequent tokens.
func (u *VocabUseCase) Vocab(top int) (*VocabResult, error) {
	sentences, err := u.loader.Sentences(domain.SplitTrain, 1)
	if err != nil {
		return nil, err
	}
	vocab := ngram.BuildVocabulary(sentences, u.cfg.Model.OOVThreshold)

	return &VocabResult{
		Sentences:    len(sentences),
		Size:         vocab.Size(),
		Total:        vocab.Total(),
		Threshold:    vocab.Threshold(),
		Folded:       vocab.Folded(),
		UnknownCount: vocab.Count(domain.UnknownToken),
		Top:          vocab.Top(top),
	}, nil
}
