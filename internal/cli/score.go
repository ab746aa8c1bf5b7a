package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ngramlm/internal/usecase"
)

var (
	scoreModel   string
	scoreLambdas string
	scoreJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [sentence...]",
	Short: "Score sentences with a trained model",
	Long: `Train a model on the training split and print the perplexity of each
argument, treated as one whitespace-tokenized sentence.

Examples:
  ngramlm score --model bigram "HDTV ."
  ngramlm score --model interpolate --lambdas 0.2,0.3,0.5 "the cat sat" "a dog ran"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreModel, "model", "m", "", "model: unigram, bigram, trigram or interpolate (default from config)")
	scoreCmd.Flags().StringVar(&scoreLambdas, "lambdas", "", "interpolation weights l1,l2,l3 (default from config)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(scoreCmd)
}

type scoreView struct {
	Sentence      string   `json:"sentence"`
	Tokens        []string `json:"tokens"`
	LogLikelihood string   `json:"log_likelihood"`
	Perplexity    string   `json:"perplexity"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	model := scoreModel
	if model == "" {
		model = cfg.Model.Type
	}
	lambdas, err := parseLambdas(scoreLambdas)
	if err != nil {
		return err
	}

	loader, tok, err := newLoader(cfg)
	if err != nil {
		return err
	}
	defer tok.Close()

	scores, err := usecase.NewScoreUseCase(loader, cfg).Score(model, lambdas, args)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if scoreJSON {
		views := make([]scoreView, len(scores))
		for i, s := range scores {
			views[i] = scoreView{
				Sentence:      s.Text,
				Tokens:        s.Tokens,
				LogLikelihood: fmt.Sprintf("%g", s.LogLikelihood),
				Perplexity:    formatPerplexity(s.Perplexity),
			}
		}
		output, _ := json.MarshalIndent(views, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	for _, s := range scores {
		fmt.Printf("%s\n", strings.Join(s.Tokens, " "))
		fmt.Printf("  log2 likelihood: %g\n", s.LogLikelihood)
		fmt.Printf("  perplexity:      %s\n", formatPerplexity(s.Perplexity))
	}
	return nil
}
