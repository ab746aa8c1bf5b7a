package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ngramlm/internal/domain"
	"ngramlm/internal/usecase"
)

var (
	tuneSet       string
	tuneStep      float64
	tuneTop       int
	tuneJSON      bool
	tuneNoHistory bool
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search interpolation weights on a held-out split",
	Long: `Evaluate the interpolated model at every point of a weight grid on the
probability simplex and report the weights with the lowest perplexity.

Examples:
  ngramlm tune --set dev
  ngramlm tune --set dev --step 0.05 --top 10`,
	Args: cobra.NoArgs,
	RunE: runTune,
}

func init() {
	tuneCmd.Flags().StringVarP(&tuneSet, "set", "s", "dev", "split to tune on: train, dev or test")
	tuneCmd.Flags().Float64Var(&tuneStep, "step", 0, "grid step (default from config)")
	tuneCmd.Flags().IntVarP(&tuneTop, "top", "k", 5, "number of best candidates to list")
	tuneCmd.Flags().BoolVar(&tuneJSON, "json", false, "output as JSON")
	tuneCmd.Flags().BoolVar(&tuneNoHistory, "no-history", false, "do not record the run")
	rootCmd.AddCommand(tuneCmd)
}

type candidateView struct {
	Lambdas    []float64 `json:"lambdas"`
	Perplexity string    `json:"perplexity"`
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	step := tuneStep
	if step == 0 {
		step = cfg.Interpolation.TuneStep
	}

	loader, tok, err := newLoader(cfg)
	if err != nil {
		return err
	}
	defer tok.Close()

	runs, err := openHistory(cfg, tuneNoHistory)
	if err != nil {
		return err
	}
	defer runs.Close()

	result, err := usecase.NewTuneUseCase(loader, runs, cfg).Tune(domain.Split(tuneSet), step, progressCallback("Tuning", tuneJSON))
	if err != nil {
		return fmt.Errorf("tuning failed: %w", err)
	}

	ranked := make([]usecase.Candidate, len(result.Candidates))
	copy(ranked, result.Candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Perplexity < ranked[j].Perplexity
	})
	if tuneTop > 0 && tuneTop < len(ranked) {
		ranked = ranked[:tuneTop]
	}

	views := make([]candidateView, len(ranked))
	for i, c := range ranked {
		views[i] = candidateView{Lambdas: c.Weights.Slice(), Perplexity: formatPerplexity(c.Perplexity)}
	}

	if tuneJSON {
		output, _ := json.MarshalIndent(map[string]any{
			"id":         result.Run.ID,
			"split":      result.Run.Split,
			"best":       views[0],
			"candidates": views,
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("\nEvaluated %d weight settings on %s\n", len(result.Candidates), tuneSet)
	fmt.Printf("Best lambdas: %v (perplexity %s)\n\n", result.Best.Weights.Slice(), formatPerplexity(result.Best.Perplexity))
	for i, v := range views {
		fmt.Printf("%2d. %v  %s\n", i+1, v.Lambdas, v.Perplexity)
	}
	return nil
}
