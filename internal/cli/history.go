package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded evaluation runs",
	Long: `List evaluation and tuning runs stored in .ngramlm/history.db, newest first.
Runs with different config hashes were produced from different corpora or
tokenizer settings and are not directly comparable.

Examples:
  ngramlm history --limit 10
  ngramlm history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if !cfg.History.Enabled {
		return fmt.Errorf("run history is disabled in the config")
	}

	runs, err := openHistory(cfg, false)
	if err != nil {
		return err
	}
	defer runs.Close()

	if historyClear {
		if err := runs.ClearRuns(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	list, err := runs.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-19s  %-6s  %-11s  %-5s  %-18s  %12s  %s\n", "TIME", "CMD", "MODEL", "SPLIT", "LAMBDAS", "PERPLEXITY", "CONFIG")
	for _, run := range list {
		lambdas := "-"
		if run.Lambdas != nil {
			lambdas = fmt.Sprintf("%.2f/%.2f/%.2f", run.Lambdas[0], run.Lambdas[1], run.Lambdas[2])
		}
		fmt.Printf("%-19s  %-6s  %-11s  %-5s  %-18s  %12s  %s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Command,
			run.Model,
			run.Split,
			lambdas,
			formatPerplexity(run.Perplexity),
			run.ConfigHash,
		)
	}
	return nil
}
