package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ngramlm/internal/domain"
	"ngramlm/internal/usecase"
)

var (
	evalModel     string
	evalSet       string
	evalLambdas   string
	evalJSON      bool
	evalNoHistory bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Train a model and report its perplexity",
	Long: `Train a model on the training split and report its perplexity on a split,
together with vocabulary statistics and the perplexity of the probe sentence.

Examples:
  ngramlm eval --model unigram --set train
  ngramlm eval --model trigram --set dev --json
  ngramlm eval --model interpolate --set test --lambdas 0.1,0.3,0.6`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalModel, "model", "m", "", "model: unigram, bigram, trigram or interpolate (default from config)")
	evalCmd.Flags().StringVarP(&evalSet, "set", "s", "dev", "split to evaluate: train, dev or test")
	evalCmd.Flags().StringVar(&evalLambdas, "lambdas", "", "interpolation weights l1,l2,l3 (default from config)")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
	evalCmd.Flags().BoolVar(&evalNoHistory, "no-history", false, "do not record the run")
	rootCmd.AddCommand(evalCmd)
}

type evalView struct {
	ID              string       `json:"id"`
	Model           string       `json:"model"`
	Split           domain.Split `json:"split"`
	Lambdas         []float64    `json:"lambdas,omitempty"`
	Perplexity      string       `json:"perplexity"`
	Tokens          int          `json:"tokens"`
	Sentences       int          `json:"sentences"`
	Stats           domain.Stats `json:"stats"`
	Probe           string       `json:"probe,omitempty"`
	ProbePerplexity string       `json:"probe_perplexity,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	model := evalModel
	if model == "" {
		model = cfg.Model.Type
	}
	lambdas, err := parseLambdas(evalLambdas)
	if err != nil {
		return err
	}

	loader, tok, err := newLoader(cfg)
	if err != nil {
		return err
	}
	defer tok.Close()

	runs, err := openHistory(cfg, evalNoHistory)
	if err != nil {
		return err
	}
	defer runs.Close()

	evalUC := usecase.NewEvaluateUseCase(loader, runs, cfg)
	result, err := evalUC.Evaluate(usecase.EvalRequest{
		Model:   model,
		Split:   domain.Split(evalSet),
		Lambdas: lambdas,
	}, progressCallback("Evaluating", evalJSON))
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	run := result.Run
	if evalJSON {
		view := evalView{
			ID:         run.ID,
			Model:      run.Model,
			Split:      run.Split,
			Lambdas:    run.Lambdas,
			Perplexity: formatPerplexity(run.Perplexity),
			Tokens:     run.Tokens,
			Sentences:  run.Sentences,
			Stats:      run.Stats,
		}
		if result.Probe != nil {
			view.Probe = result.Probe.Sentence
			view.ProbePerplexity = formatPerplexity(result.Probe.Perplexity)
		}
		output, _ := json.MarshalIndent(view, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("\nModel: %s", run.Model)
	if run.Lambdas != nil {
		fmt.Printf(" (lambdas %v)", run.Lambdas)
	}
	fmt.Println()
	printStats(run.Stats)
	fmt.Printf("\nPerplexity on %s: %s\n", run.Split, formatPerplexity(run.Perplexity))
	fmt.Printf("  Sentences: %d\n", run.Sentences)
	fmt.Printf("  Tokens:    %d\n", run.Tokens)
	if result.Probe != nil {
		fmt.Printf("\nProbe %q: %s\n", result.Probe.Sentence, formatPerplexity(result.Probe.Perplexity))
	}
	if result.CacheHits+result.CacheMisses > 0 {
		fmt.Printf("\nScore cache: %d hits, %d misses\n", result.CacheHits, result.CacheMisses)
	}
	return nil
}

func printStats(stats domain.Stats) {
	fmt.Printf("  Vocabulary size: %d (threshold %d, <UNK> count %d)\n", stats.VocabSize, stats.OOVThreshold, stats.UnknownCount)
	for i, n := range stats.UniqueNgrams {
		fmt.Printf("  Unique %d-grams: %d\n", i+1, n)
	}
}
