package usecase

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ngramlm/config"
	"ngramlm/internal/adapter/analyzer"
	"ngramlm/internal/adapter/fs"
	"ngramlm/internal/adapter/memstore"
	"ngramlm/internal/adapter/ngram"
	"ngramlm/internal/domain"
)

// newFixture writes train/dev/test files under a temp dir and returns a
// loader over them. The vocabulary keeps every token (threshold 1).
func newFixture(t *testing.T, train, dev, test []string) (*Loader, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	for name, lines := range map[string][]string{"train.txt": train, "dev.txt": dev, "test.txt": test} {
		content := strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Corpus.Train = []string{"train.txt"}
	cfg.Corpus.Dev = []string{"dev.txt"}
	cfg.Corpus.Test = []string{"test.txt"}
	cfg.Model.OOVThreshold = 1
	cfg.Eval.Probe = ""

	tok, err := analyzer.NewTokenizer(analyzer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tok.Close)

	reader := fs.NewCorpusReader(fs.NewWalker(cfg.Corpus.Excludes))
	return NewLoader(reader, tok, cfg, dir), cfg
}

var trainLines = []string{"a b", "a b", "b a"}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLoader_Fraction(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a"}, []string{"b"})
	cfg.Corpus.Fraction = 0.5

	lines, err := loader.Lines(domain.SplitTrain)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("expected ceil(0.5*3)=2 lines, got %d", len(lines))
	}

	// Held-out splits are never sampled.
	dev, _ := loader.Lines(domain.SplitDev)
	if len(dev) != 1 {
		t.Errorf("expected 1 dev line, got %d", len(dev))
	}
}

func TestLoader_UnknownSplit(t *testing.T) {
	loader, _ := newFixture(t, trainLines, []string{"a"}, []string{"b"})
	if _, err := loader.Lines("holdout"); err == nil {
		t.Error("expected an error for an unknown split")
	}
}

func TestEvaluate_Unigram(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b"}, []string{"b"})
	runs := memstore.NewMemoryStore()
	uc := NewEvaluateUseCase(loader, runs, cfg)

	result, err := uc.Evaluate(EvalRequest{Model: ModelUnigram, Split: domain.SplitDev}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// a, b and <STOP> each have probability 3/9; M = 2.
	want := math.Pow(3, 1.5)
	if !approx(result.Evaluation.Perplexity, want) {
		t.Errorf("expected perplexity %f, got %f", want, result.Evaluation.Perplexity)
	}
	if result.Probe != nil {
		t.Error("expected no probe result with an empty probe")
	}

	stored, _ := runs.ListRuns(0)
	if len(stored) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(stored))
	}
	run := stored[0]
	if run.Command != "eval" || run.Model != ModelUnigram || run.Split != domain.SplitDev {
		t.Errorf("unexpected run %+v", run)
	}
	if run.ID == "" || run.ConfigHash == "" {
		t.Error("expected run id and config hash")
	}
	if run.Lambdas != nil {
		t.Errorf("expected no lambdas for a unigram run, got %v", run.Lambdas)
	}
	if run.Stats.VocabSize != 4 {
		t.Errorf("expected vocab size 4, got %d", run.Stats.VocabSize)
	}
	if run.Stats.Sentences != len(trainLines) {
		t.Errorf("expected %d training sentences in stats, got %d", len(trainLines), run.Stats.Sentences)
	}
}

func TestEvaluate_BigramWithProbe(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b"}, []string{"b"})
	cfg.Eval.Probe = "a b"
	uc := NewEvaluateUseCase(loader, nil, cfg)

	var stages []string
	result, err := uc.Evaluate(EvalRequest{Model: ModelBigram, Split: domain.SplitDev}, func(done, total int, stage string) {
		stages = append(stages, stage)
	})
	if err != nil {
		t.Fatal(err)
	}

	// P(a|<START>) = P(b|a) = P(<STOP>|b) = 2/3.
	if !approx(result.Evaluation.Perplexity, 1.5) {
		t.Errorf("expected perplexity 1.5, got %f", result.Evaluation.Perplexity)
	}
	if result.Probe == nil || !approx(result.Probe.Perplexity, 1.5) {
		t.Errorf("expected probe perplexity 1.5, got %+v", result.Probe)
	}
	if len(stages) != evalSteps+1 || stages[len(stages)-1] != "done" {
		t.Errorf("unexpected progress stages %v", stages)
	}
}

func TestEvaluate_UnseenBigramIsInfinite(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"b b"}, []string{"b"})
	uc := NewEvaluateUseCase(loader, nil, cfg)

	result, err := uc.Evaluate(EvalRequest{Model: ModelBigram, Split: domain.SplitDev}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(result.Evaluation.Perplexity, 1) {
		t.Errorf("expected +Inf, got %f", result.Evaluation.Perplexity)
	}
}

func TestEvaluate_Interpolated(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b", "b a"}, []string{"b"})
	runs := memstore.NewMemoryStore()
	uc := NewEvaluateUseCase(loader, runs, cfg)

	lambdas := []float64{0.2, 0.3, 0.5}
	result, err := uc.Evaluate(EvalRequest{Model: ModelInterpolate, Split: domain.SplitDev, Lambdas: lambdas}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p := result.Evaluation.Perplexity; math.IsInf(p, 0) || p < 1 {
		t.Errorf("expected a finite perplexity >= 1, got %f", p)
	}
	if len(result.Run.Lambdas) != 3 || result.Run.Lambdas[2] != 0.5 {
		t.Errorf("expected lambdas to be recorded, got %v", result.Run.Lambdas)
	}
	if result.Run.Stats.Sentences != len(trainLines) {
		t.Errorf("expected %d training sentences in stats, got %d", len(trainLines), result.Run.Stats.Sentences)
	}
	if len(result.Run.Stats.UniqueNgrams) != 3 {
		t.Errorf("expected stats for 3 orders, got %v", result.Run.Stats.UniqueNgrams)
	}
}

func TestEvaluate_InvalidWeights(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b"}, []string{"b"})
	runs := memstore.NewMemoryStore()
	uc := NewEvaluateUseCase(loader, runs, cfg)

	_, err := uc.Evaluate(EvalRequest{Model: ModelInterpolate, Split: domain.SplitDev, Lambdas: []float64{0.5, 0.5, 0.5}}, nil)
	if !errors.Is(err, ngram.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	if stored, _ := runs.ListRuns(0); len(stored) != 0 {
		t.Error("expected no run to be recorded on failure")
	}
}

func TestEvaluate_UnknownModel(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b"}, []string{"b"})
	uc := NewEvaluateUseCase(loader, nil, cfg)

	_, err := uc.Evaluate(EvalRequest{Model: "fourgram", Split: domain.SplitDev}, nil)
	if !errors.Is(err, ngram.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEvaluate_WorkersMatchSerial(t *testing.T) {
	dev := []string{"a b", "b a", "a b", "b a", "a b", "b a", "a b", "b a"}
	loader, cfg := newFixture(t, trainLines, dev, []string{"b"})

	serial, err := NewEvaluateUseCase(loader, nil, cfg).Evaluate(EvalRequest{Model: ModelBigram, Split: domain.SplitDev}, nil)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Eval.Workers = 4
	parallel, err := NewEvaluateUseCase(loader, nil, cfg).Evaluate(EvalRequest{Model: ModelBigram, Split: domain.SplitDev}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(serial.Evaluation.Perplexity, parallel.Evaluation.Perplexity) {
		t.Errorf("serial %f != parallel %f", serial.Evaluation.Perplexity, parallel.Evaluation.Perplexity)
	}
}

func TestEvaluate_Cache(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b", "a b", "a b"}, []string{"b"})
	cfg.Eval.CacheSize = 16
	uc := NewEvaluateUseCase(loader, nil, cfg)

	result, err := uc.Evaluate(EvalRequest{Model: ModelBigram, Split: domain.SplitDev}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheHits != 2 || result.CacheMisses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", result.CacheHits, result.CacheMisses)
	}
	if !approx(result.Evaluation.Perplexity, 1.5) {
		t.Errorf("expected cached perplexity 1.5, got %f", result.Evaluation.Perplexity)
	}
}

func TestScore(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a"}, []string{"b"})
	uc := NewScoreUseCase(loader, cfg)

	scores, err := uc.Score(ModelBigram, nil, []string{"a b", "z"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if !approx(scores[0].Perplexity, 1.5) {
		t.Errorf("expected 1.5, got %f", scores[0].Perplexity)
	}
	if len(scores[0].Tokens) != 4 || scores[0].Tokens[0] != domain.StartToken {
		t.Errorf("unexpected framing %v", scores[0].Tokens)
	}
	// "z" maps to <UNK>, which never follows <START> in training.
	if !math.IsInf(scores[1].Perplexity, 1) {
		t.Errorf("expected +Inf for an unseen word, got %f", scores[1].Perplexity)
	}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		step float64
		want int
	}{
		{1, 3},
		{0.5, 6},
		{0.1, 66},
		{0.3, 10},
		{0, 0},
		{1.5, 0},
	}

	for _, tt := range tests {
		grid := Grid(tt.step)
		if len(grid) != tt.want {
			t.Errorf("step %g: expected %d points, got %d", tt.step, tt.want, len(grid))
		}
		for _, w := range grid {
			if err := w.Validate(ngram.DefaultTolerance); err != nil {
				t.Errorf("step %g: %v", tt.step, err)
			}
		}
	}
}

func TestTune(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b", "b a"}, []string{"b"})
	runs := memstore.NewMemoryStore()
	uc := NewTuneUseCase(loader, runs, cfg)

	calls := 0
	result, err := uc.Tune(domain.SplitDev, 0.5, func(done, total int, stage string) {
		calls++
		if total != 6 {
			t.Errorf("expected 6 grid points, got %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 7 {
		t.Errorf("expected 7 progress calls, got %d", calls)
	}
	if len(result.Candidates) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(result.Candidates))
	}
	for _, c := range result.Candidates {
		if c.Perplexity < result.Best.Perplexity {
			t.Errorf("candidate %v beats best %v", c, result.Best)
		}
	}

	stored, _ := runs.ListRuns(0)
	if len(stored) != 1 || stored[0].Command != "tune" {
		t.Fatalf("expected one tune run, got %+v", stored)
	}
	if stored[0].Perplexity != result.Best.Perplexity {
		t.Errorf("expected recorded perplexity %f, got %f", result.Best.Perplexity, stored[0].Perplexity)
	}
	if len(stored[0].Lambdas) != 3 {
		t.Errorf("expected best lambdas recorded, got %v", stored[0].Lambdas)
	}
}

func TestTune_InvalidStep(t *testing.T) {
	loader, cfg := newFixture(t, trainLines, []string{"a b"}, []string{"b"})
	uc := NewTuneUseCase(loader, nil, cfg)

	if _, err := uc.Tune(domain.SplitDev, 0, nil); !errors.Is(err, ngram.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVocab(t *testing.T) {
	loader, cfg := newFixture(t, []string{"a b", "a b", "b c"}, []string{"a"}, []string{"b"})
	cfg.Model.OOVThreshold = 2
	uc := NewVocabUseCase(loader, cfg)

	result, err := uc.Vocab(1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Sentences != 3 {
		t.Errorf("expected 3 sentences, got %d", result.Sentences)
	}
	// <STOP>, <UNK>, a, b.
	if result.Size != 4 {
		t.Errorf("expected size 4, got %d", result.Size)
	}
	if result.Total != 9 {
		t.Errorf("expected total 9, got %d", result.Total)
	}
	if result.Folded != 1 || result.UnknownCount != 1 {
		t.Errorf("expected c folded into <UNK>, got folded=%d unk=%d", result.Folded, result.UnknownCount)
	}
	// b and <STOP> tie at 3; ties break lexically.
	if len(result.Top) != 1 || result.Top[0].Token != domain.StopToken {
		t.Errorf("unexpected top tokens %v", result.Top)
	}
}
