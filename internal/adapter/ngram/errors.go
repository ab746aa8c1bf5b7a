package ngram

import "errors"

var (
	// ErrInvalidWeights is returned when interpolation weights are outside
	// [0,1] or do not sum to 1.
	ErrInvalidWeights = errors.New("invalid interpolation weights")

	// ErrInvalidInput is returned for degenerate datasets, unsupported orders
	// and n-grams whose length does not match the model order.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUntrainedModel is returned when a model is queried before Train.
	ErrUntrainedModel = errors.New("model is not trained")

	// ErrAlreadyTrained is returned when Train is called on a model twice.
	ErrAlreadyTrained = errors.New("model is already trained")
)
