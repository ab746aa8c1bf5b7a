package port

import "ngramlm/internal/domain"

type Tokenizer interface {
	Tokenize(text string) []string

	// Frame tokenizes a line and wraps it with order-1 start markers and one
	// stop marker.
	Frame(text string, order int) domain.Sentence
}
