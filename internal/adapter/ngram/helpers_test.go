package ngram

import (
	"strings"

	"ngramlm/internal/domain"
)

// frame mirrors the tokenizer: order-1 start markers, the words, one stop.
func frame(order int, line string) domain.Sentence {
	s := make(domain.Sentence, 0, order+8)
	for i := 0; i < order-1; i++ {
		s = append(s, domain.StartToken)
	}
	s = append(s, strings.Fields(line)...)
	return append(s, domain.StopToken)
}

func frameAll(order int, lines ...string) []domain.Sentence {
	out := make([]domain.Sentence, len(lines))
	for i, line := range lines {
		out[i] = frame(order, line)
	}
	return out
}
