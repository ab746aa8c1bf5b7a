package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"ngramlm/config"
	"ngramlm/internal/adapter/analyzer"
	"ngramlm/internal/adapter/fs"
	"ngramlm/internal/adapter/memstore"
	"ngramlm/internal/adapter/store"
	"ngramlm/internal/port"
	"ngramlm/internal/usecase"
)

// newLoader wires the tokenizer and corpus reader. The caller closes the
// returned tokenizer.
func newLoader(cfg *config.Config) (*usecase.Loader, *analyzer.Tokenizer, error) {
	tok, err := analyzer.NewTokenizer(analyzer.Options{
		Lowercase: cfg.Tokenizer.Lowercase,
		NFC:       cfg.Tokenizer.NFC,
		Stemming:  cfg.Tokenizer.Stemming,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	reader := fs.NewCorpusReader(fs.NewWalker(cfg.Corpus.Excludes))
	return usecase.NewLoader(reader, tok, cfg, GetRootDir()), tok, nil
}

// openHistory opens the run history under the root directory, migrating it
// if needed. With history disabled runs are kept in memory only.
func openHistory(cfg *config.Config, disabled bool) (port.RunStore, error) {
	if disabled || !cfg.History.Enabled {
		return memstore.NewMemoryStore(), nil
	}

	dir := GetRootDir()
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .ngramlm directory: %w", err)
	}

	st, err := store.NewBoltStore(config.HistoryDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	migration, err := st.CheckMigration()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check migration: %w", err)
	}
	if migration.NeedsMigration {
		log.Infof("running history migration: %s", migration.Reason)
		if err := st.Migrate(); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return st, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

// progressCallback lazily creates a bar once the total is known.
func progressCallback(label string, quiet bool) usecase.ProgressFunc {
	if quiet {
		return nil
	}
	var bar *progressbar.ProgressBar
	var startTime time.Time
	return func(done, total int, stage string) {
		if bar == nil {
			startTime = time.Now()
			bar = newProgressBar(total, fmt.Sprintf("[cyan]%s[reset]", label))
		}
		bar.Set(done)

		desc := fmt.Sprintf("[cyan]%s[reset] %s", label, stage)
		if done > 0 && done < total {
			rate := float64(done) / time.Since(startTime).Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				desc += " ETA: " + formatDuration(eta)
			}
		}
		bar.Describe(desc)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// parseLambdas reads "l1,l2,l3".
func parseLambdas(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("--lambdas needs 3 comma-separated values, got %q", s)
	}
	lambdas := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lambda %q: %w", p, err)
		}
		lambdas[i] = v
	}
	return lambdas, nil
}

// formatPerplexity renders +Inf as "inf" so it survives JSON output.
func formatPerplexity(p float64) string {
	if math.IsInf(p, 1) {
		return "inf"
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}
