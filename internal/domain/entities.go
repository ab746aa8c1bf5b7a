package domain

import "time"

// Reserved symbols. They are matched literally and case-sensitively.
const (
	StartToken   = "<START>"
	StopToken    = "<STOP>"
	UnknownToken = "<UNK>"
)

// Sentence is a framed token sequence: order-1 start markers, the content
// tokens, then exactly one stop marker.
type Sentence []string

// Content returns the tokens between the start padding and the stop marker.
func (s Sentence) Content() []string {
	i := 0
	for i < len(s) && s[i] == StartToken {
		i++
	}
	j := len(s)
	if j > i && s[j-1] == StopToken {
		j--
	}
	return s[i:j]
}

// Split names a dataset partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitDev   Split = "dev"
	SplitTest  Split = "test"
)

// Valid reports whether s is a known split.
func (s Split) Valid() bool {
	switch s {
	case SplitTrain, SplitDev, SplitTest:
		return true
	}
	return false
}

// Stats summarizes a trained model.
type Stats struct {
	Order        int   `json:"order"`
	OOVThreshold int   `json:"oov_threshold"`
	Sentences    int   `json:"sentences"`
	VocabSize    int   `json:"vocab_size"`
	UnknownCount int   `json:"unknown_count"`
	UniqueNgrams []int `json:"unique_ngrams"`
}

// Run is one recorded evaluation.
type Run struct {
	ID         string    `msgpack:"id" json:"id"`
	Command    string    `msgpack:"command" json:"command"`
	Model      string    `msgpack:"model" json:"model"`
	Split      Split     `msgpack:"split" json:"split"`
	Lambdas    []float64 `msgpack:"lambdas,omitempty" json:"lambdas,omitempty"`
	Perplexity float64   `msgpack:"perplexity" json:"perplexity"`
	Tokens     int       `msgpack:"tokens" json:"tokens"`
	Sentences  int       `msgpack:"sentences" json:"sentences"`
	Stats      Stats     `msgpack:"stats" json:"stats"`
	ConfigHash string    `msgpack:"config_hash" json:"config_hash"`
	CreatedAt  time.Time `msgpack:"created_at" json:"created_at"`
}

// TokenCount pairs a vocabulary entry with its training frequency.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}
