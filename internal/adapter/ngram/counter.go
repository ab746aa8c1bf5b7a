package ngram

import (
	"fmt"
	"sort"

	"ngramlm/internal/domain"
)

// MaxOrder is the highest supported n-gram order.
const MaxOrder = 3

// Key is a fixed-width n-gram. Slots beyond the table order are empty.
type Key [MaxOrder]string

// KeyOf packs tokens into a Key.
func KeyOf(tokens ...string) Key {
	var k Key
	copy(k[:], tokens)
	return k
}

// CountTable holds occurrence counts of order-k windows over OOV-mapped
// sentences.
type CountTable struct {
	order  int
	counts map[Key]int
	total  int
}

// NewCountTable returns an empty table for the given order.
func NewCountTable(order int) *CountTable {
	return &CountTable{
		order:  order,
		counts: make(map[Key]int),
	}
}

// Count counts every window of order consecutive tokens in each sentence after
// mapping tokens through vocab. Windows never span sentences.
func Count(sentences []domain.Sentence, order int, vocab *Vocabulary) (*CountTable, error) {
	if order < 1 || order > MaxOrder {
		return nil, fmt.Errorf("%w: unsupported order %d", ErrInvalidInput, order)
	}
	if vocab == nil {
		return nil, fmt.Errorf("%w: nil vocabulary", ErrInvalidInput)
	}

	table := NewCountTable(order)
	for _, sentence := range sentences {
		table.addSentence(vocab.MapAll(sentence))
	}
	return table, nil
}

func (t *CountTable) addSentence(mapped domain.Sentence) {
	for i := 0; i+t.order <= len(mapped); i++ {
		t.counts[KeyOf(mapped[i:i+t.order]...)]++
		t.total++
	}
}

// Order returns the window length.
func (t *CountTable) Order() int {
	return t.order
}

// Get returns the count of the given window. Missing windows count 0.
func (t *CountTable) Get(tokens ...string) int {
	if len(tokens) != t.order {
		return 0
	}
	return t.counts[KeyOf(tokens...)]
}

// Len is the number of distinct windows.
func (t *CountTable) Len() int {
	return len(t.counts)
}

// Total is the number of windows counted.
func (t *CountTable) Total() int {
	return t.total
}

// Each calls fn for every window in lexical key order.
func (t *CountTable) Each(fn func(ngram []string, count int)) {
	keys := make([]Key, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		for s := 0; s < t.order; s++ {
			if keys[i][s] != keys[j][s] {
				return keys[i][s] < keys[j][s]
			}
		}
		return false
	})
	for _, k := range keys {
		fn(append([]string(nil), k[:t.order]...), t.counts[k])
	}
}
