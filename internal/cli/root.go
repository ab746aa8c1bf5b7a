package cli

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"ngramlm/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
)

var log = logging.Logger("ngramlm/cli")

var rootCmd = &cobra.Command{
	Use:   "ngramlm",
	Short: "N-gram language models - Train and evaluate unigram, bigram, trigram and interpolated models",
	Long: `ngramlm trains maximum-likelihood n-gram language models on a tokenized
corpus, folds rare words into <UNK>, and reports perplexity on held-out splits.

Example usage:
  ngramlm eval --model trigram --set dev           # Perplexity on the dev split
  ngramlm eval --model interpolate --lambdas 0.1,0.3,0.6
  ngramlm tune --set dev --step 0.1                # Search interpolation weights
  ngramlm score --model bigram "HDTV ."            # Score one sentence`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := logging.SetLogLevel("*", cfg.Logging.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ngramlm.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "corpus root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
