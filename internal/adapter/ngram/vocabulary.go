package ngram

import (
	"sort"

	"ngramlm/internal/domain"
)

// DefaultOOVThreshold is the minimum training frequency a token needs to stay
// a distinct vocabulary entry.
const DefaultOOVThreshold = 3

// Vocabulary maps every known token to its training frequency. Tokens seen
// fewer than threshold times are folded into <UNK>. It is immutable once built.
type Vocabulary struct {
	counts    map[string]int
	threshold int
	total     int
	folded    int
}

// BuildVocabulary tallies every non-start token of the training sentences and
// folds low-frequency tokens into the unknown symbol. The reserved symbols are
// always present as keys, possibly with a zero count.
func BuildVocabulary(sentences []domain.Sentence, oovThreshold int) *Vocabulary {
	tally := make(map[string]int)
	for _, sentence := range sentences {
		for _, token := range sentence {
			if token == domain.StartToken {
				continue
			}
			tally[token]++
		}
	}

	v := &Vocabulary{
		counts: map[string]int{
			domain.StartToken:   0,
			domain.StopToken:    0,
			domain.UnknownToken: 0,
		},
		threshold: oovThreshold,
	}

	for token, count := range tally {
		switch {
		case token == domain.UnknownToken:
			v.counts[domain.UnknownToken] += count
		case count < oovThreshold:
			v.counts[domain.UnknownToken] += count
			v.folded += count
		default:
			v.counts[token] = count
		}
	}

	for _, count := range v.counts {
		v.total += count
	}
	return v
}

// Contains reports whether token is a vocabulary key.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.counts[token]
	return ok
}

// Map returns token if it is known and <UNK> otherwise.
func (v *Vocabulary) Map(token string) string {
	if v.Contains(token) {
		return token
	}
	return domain.UnknownToken
}

// MapAll maps every token of a sentence through the vocabulary.
func (v *Vocabulary) MapAll(sentence domain.Sentence) domain.Sentence {
	mapped := make(domain.Sentence, len(sentence))
	for i, token := range sentence {
		mapped[i] = v.Map(token)
	}
	return mapped
}

// Count returns the training frequency of token, or the <UNK> frequency when
// token is not a key.
func (v *Vocabulary) Count(token string) int {
	if count, ok := v.counts[token]; ok {
		return count
	}
	return v.counts[domain.UnknownToken]
}

// Total is the number of counted (non-start) training tokens.
func (v *Vocabulary) Total() int {
	return v.total
}

// Size is the number of vocabulary entries excluding <START>.
func (v *Vocabulary) Size() int {
	return len(v.counts) - 1
}

// Threshold returns the OOV threshold the vocabulary was built with.
func (v *Vocabulary) Threshold() int {
	return v.threshold
}

// Folded is the number of token occurrences moved into <UNK> because their
// surface form fell below the threshold. Literal <UNK> occurrences are not
// included.
func (v *Vocabulary) Folded() int {
	return v.folded
}

// Tokens returns all keys in lexical order.
func (v *Vocabulary) Tokens() []string {
	tokens := make([]string, 0, len(v.counts))
	for token := range v.counts {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Top returns the n most frequent entries, ties broken lexically. n <= 0
// returns every entry.
func (v *Vocabulary) Top(n int) []domain.TokenCount {
	entries := make([]domain.TokenCount, 0, len(v.counts))
	for token, count := range v.counts {
		entries = append(entries, domain.TokenCount{Token: token, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Token < entries[j].Token
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
