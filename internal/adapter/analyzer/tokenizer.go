package analyzer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tebeka/snowball"
	"golang.org/x/text/unicode/norm"

	"ngramlm/internal/domain"
)

// Options controls token normalization. The zero value splits on whitespace
// and leaves tokens untouched.
type Options struct {
	Lowercase bool
	// NFC applies Unicode canonical composition to every token.
	NFC bool
	// Stemming names a snowball language ("english", "french", ...). Empty
	// disables stemming.
	Stemming string
}

// Tokenizer splits lines into whitespace tokens and frames them as sentences.
type Tokenizer struct {
	opts Options

	mu      sync.Mutex
	stemmer *snowball.Stemmer
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer(opts Options) (*Tokenizer, error) {
	t := &Tokenizer{opts: opts}
	if opts.Stemming != "" {
		stemmer, err := snowball.New(opts.Stemming)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s stemmer: %w", opts.Stemming, err)
		}
		t.stemmer = stemmer
	}
	return t, nil
}

// Close releases the stemmer, if any.
func (t *Tokenizer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stemmer != nil {
		t.stemmer.Close()
		t.stemmer = nil
	}
}

// Tokenize splits text on whitespace and normalizes each token. Reserved
// symbols pass through unchanged.
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		if isReserved(word) {
			tokens = append(tokens, word)
			continue
		}
		if t.opts.NFC {
			word = norm.NFC.String(word)
		}
		if t.opts.Lowercase {
			word = strings.ToLower(word)
		}
		word = t.stem(word)
		tokens = append(tokens, word)
	}

	return tokens
}

// Frame tokenizes text and wraps it with order-1 start markers and one stop
// marker. Orders below 1 are treated as 1.
func (t *Tokenizer) Frame(text string, order int) domain.Sentence {
	tokens := t.Tokenize(text)
	padding := max(order-1, 0)

	sentence := make(domain.Sentence, 0, padding+len(tokens)+1)
	for i := 0; i < padding; i++ {
		sentence = append(sentence, domain.StartToken)
	}
	sentence = append(sentence, tokens...)
	return append(sentence, domain.StopToken)
}

// FrameAll frames every line.
func (t *Tokenizer) FrameAll(lines []string, order int) []domain.Sentence {
	sentences := make([]domain.Sentence, len(lines))
	for i, line := range lines {
		sentences[i] = t.Frame(line, order)
	}
	return sentences
}

// stem is serialized because the underlying C stemmer keeps per-instance state.
func (t *Tokenizer) stem(word string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stemmer == nil {
		return word
	}
	return t.stemmer.Stem(word)
}

func isReserved(word string) bool {
	switch word {
	case domain.StartToken, domain.StopToken, domain.UnknownToken:
		return true
	}
	return false
}
