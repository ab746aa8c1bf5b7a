package usecase

import (
	"fmt"
	"math"

	logging "github.com/ipfs/go-log/v2"

	"ngramlm/config"
	"ngramlm/internal/domain"
	"ngramlm/internal/port"
)

var log = logging.Logger("ngramlm/usecase")

// Loader reads dataset splits and frames their lines into sentences.
type Loader struct {
	reader    port.CorpusReader
	tokenizer port.Tokenizer
	cfg       *config.Config
	root      string
}

// NewLoader creates a loader resolving corpus patterns under root.
func NewLoader(reader port.CorpusReader, tokenizer port.Tokenizer, cfg *config.Config, root string) *Loader {
	return &Loader{
		reader:    reader,
		tokenizer: tokenizer,
		cfg:       cfg,
		root:      root,
	}
}

// Lines returns the raw lines of a split. The training split is cut down to
// its first ceil(fraction*N) lines.
func (l *Loader) Lines(split domain.Split) ([]string, error) {
	if !split.Valid() {
		return nil, fmt.Errorf("unknown split %q", split)
	}
	patterns, err := l.cfg.Patterns(string(split))
	if err != nil {
		return nil, err
	}

	lines, err := l.reader.ReadLines(l.root, patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s split: %w", split, err)
	}

	if split == domain.SplitTrain {
		lines = sample(lines, l.cfg.Corpus.Fraction)
	}
	log.Debugf("loaded %d %s lines", len(lines), split)
	return lines, nil
}

// Sentences returns a split framed for a model of the given order.
func (l *Loader) Sentences(split domain.Split, order int) ([]domain.Sentence, error) {
	lines, err := l.Lines(split)
	if err != nil {
		return nil, err
	}
	return l.Frame(lines, order), nil
}

// Frame frames raw lines for a model of the given order.
func (l *Loader) Frame(lines []string, order int) []domain.Sentence {
	sentences := make([]domain.Sentence, len(lines))
	for i, line := range lines {
		sentences[i] = l.tokenizer.Frame(line, order)
	}
	return sentences
}

func sample(lines []string, fraction float64) []string {
	if fraction <= 0 || fraction >= 1 {
		return lines
	}
	n := int(math.Ceil(fraction * float64(len(lines))))
	return lines[:min(n, len(lines))]
}
