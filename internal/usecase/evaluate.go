package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ngramlm/config"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/adapter/store"
	"ngramlm/internal/domain"
	"ngramlm/internal/port"
)

// ProgressFunc reports how many of total steps are done.
type ProgressFunc func(done, total int, stage string)

// EvaluateUseCase trains a model and measures its perplexity on a split.
type EvaluateUseCase struct {
	loader *Loader
	runs   port.RunStore
	cfg    *config.Config
}

// NewEvaluateUseCase creates a new evaluate use case. runs may be nil to
// skip recording.
func NewEvaluateUseCase(loader *Loader, runs port.RunStore, cfg *config.Config) *EvaluateUseCase {
	return &EvaluateUseCase{
		loader: loader,
		runs:   runs,
		cfg:    cfg,
	}
}

// EvalRequest selects what to evaluate.
type EvalRequest struct {
	Model   string
	Split   domain.Split
	Lambdas []float64 // Interpolation weights; nil uses the configured ones
}

// ProbeResult is the perplexity of the configured probe sentence.
type ProbeResult struct {
	Sentence   string
	Perplexity float64
}

// EvalResult contains the results of an evaluation.
type EvalResult struct {
	Run         domain.Run
	Evaluation  ngram.Evaluation
	Probe       *ProbeResult
	CacheHits   int64
	CacheMisses int64
}

const evalSteps = 4

// Evaluate trains on the training split, scores the requested split and the
// probe sentence, and records the run.
func (u *EvaluateUseCase) Evaluate(req EvalRequest, progress ProgressFunc) (*EvalResult, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}
	lambdas := req.Lambdas
	if lambdas == nil {
		lambdas = u.cfg.Interpolation.Lambdas
	}

	progress(0, evalSteps, "training")
	model, err := Train(u.loader, req.Model, u.cfg.Model.OOVThreshold, u.cfg.Interpolation.Tolerance)
	if err != nil {
		return nil, err
	}
	model.WithCache(u.cfg.Eval.CacheSize)

	progress(1, evalSteps, "loading "+string(req.Split))
	sentences, err := u.loader.Sentences(req.Split, model.Order)
	if err != nil {
		return nil, err
	}

	progress(2, evalSteps, "scoring "+string(req.Split))
	eval, err := u.score(model, lambdas, sentences)
	if err != nil {
		return nil, err
	}

	progress(3, evalSteps, "scoring probe")
	probe, err := u.probe(model, lambdas)
	if err != nil {
		return nil, err
	}
	progress(evalSteps, evalSteps, "done")

	result := &EvalResult{
		Evaluation: eval,
		Probe:      probe,
		Run:        u.newRun("eval", model, req.Split, eval),
	}
	if model.Interpolated() {
		result.Run.Lambdas = lambdas
	}
	result.CacheHits, result.CacheMisses = model.CacheStats()

	log.Infof("%s perplexity on %s: %g (%d tokens)", req.Model, req.Split, eval.Perplexity, eval.Tokens)
	if err := u.record(result.Run); err != nil {
		return nil, err
	}
	return result, nil
}

func (u *EvaluateUseCase) score(model *TrainedModel, lambdas []float64, sentences []domain.Sentence) (ngram.Evaluation, error) {
	scorer, err := model.Scorer(lambdas)
	if err != nil {
		return ngram.Evaluation{}, err
	}
	return ngram.Evaluate(scorer, sentences, ngram.WithWorkers(u.cfg.Eval.Workers))
}

func (u *EvaluateUseCase) probe(model *TrainedModel, lambdas []float64) (*ProbeResult, error) {
	if u.cfg.Eval.Probe == "" {
		return nil, nil
	}
	eval, err := u.score(model, lambdas, u.loader.Frame([]string{u.cfg.Eval.Probe}, model.Order))
	if err != nil {
		return nil, fmt.Errorf("failed to score probe sentence: %w", err)
	}
	return &ProbeResult{Sentence: u.cfg.Eval.Probe, Perplexity: eval.Perplexity}, nil
}

func (u *EvaluateUseCase) newRun(command string, model *TrainedModel, split domain.Split, eval ngram.Evaluation) domain.Run {
	return domain.Run{
		ID:         uuid.NewString(),
		Command:    command,
		Model:      model.Name,
		Split:      split,
		Perplexity: eval.Perplexity,
		Tokens:     eval.Tokens,
		Sentences:  eval.Sentences,
		Stats:      model.Stats(),
		ConfigHash: store.ComputeConfigHash(u.cfg),
		CreatedAt:  time.Now(),
	}
}

func (u *EvaluateUseCase) record(run domain.Run) error {
	if u.runs == nil {
		return nil
	}
	if err := u.runs.PutRun(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
