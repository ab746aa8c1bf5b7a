package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ngramlm/internal/usecase"
)

var (
	vocabTop  int
	vocabJSON bool
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Show training vocabulary statistics",
	Long: `Build the vocabulary from the training split and show its size, the mass
folded into <UNK>, and the most frequent tokens.

Examples:
  ngramlm vocab
  ngramlm vocab --top 50 --json`,
	Args: cobra.NoArgs,
	RunE: runVocab,
}

func init() {
	vocabCmd.Flags().IntVarP(&vocabTop, "top", "k", 20, "number of most frequent tokens to list")
	vocabCmd.Flags().BoolVar(&vocabJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(vocabCmd)
}

func runVocab(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	loader, tok, err := newLoader(cfg)
	if err != nil {
		return err
	}
	defer tok.Close()

	result, err := usecase.NewVocabUseCase(loader, cfg).Vocab(vocabTop)
	if err != nil {
		return fmt.Errorf("failed to build vocabulary: %w", err)
	}

	if vocabJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Training sentences: %d\n", result.Sentences)
	fmt.Printf("Vocabulary size:    %d\n", result.Size)
	fmt.Printf("Token occurrences:  %d\n", result.Total)
	fmt.Printf("<UNK> count:        %d (%d folded below threshold %d)\n", result.UnknownCount, result.Folded, result.Threshold)
	if len(result.Top) > 0 {
		fmt.Printf("\nMost frequent:\n")
		for i, tc := range result.Top {
			fmt.Printf("%4d. %-20s %d\n", i+1, tc.Token, tc.Count)
		}
	}
	return nil
}
