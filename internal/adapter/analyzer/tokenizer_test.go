package analyzer

import (
	"reflect"
	"testing"

	"ngramlm/internal/domain"
)

func newTokenizer(t *testing.T, opts Options) *Tokenizer {
	t.Helper()
	tok, err := NewTokenizer(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tok.Close)
	return tok
}

func TestTokenizer_Tokenize_Whitespace(t *testing.T) {
	tok := newTokenizer(t, Options{})

	tokens := tok.Tokenize("  The  cat\tsat .\n")
	want := []string{"The", "cat", "sat", "."}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_Tokenize_Lowercase(t *testing.T) {
	tok := newTokenizer(t, Options{Lowercase: true})

	tokens := tok.Tokenize("HDTV Is <UNK>")
	want := []string{"hdtv", "is", domain.UnknownToken}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_Tokenize_NFC(t *testing.T) {
	tok := newTokenizer(t, Options{NFC: true})

	// "e" followed by a combining acute accent composes to a single rune.
	tokens := tok.Tokenize("cafe\u0301")
	if len(tokens) != 1 || tokens[0] != "caf\u00e9" {
		t.Errorf("expected composed form, got %q", tokens)
	}
}

func TestTokenizer_Tokenize_WithStemming(t *testing.T) {
	tok := newTokenizer(t, Options{Lowercase: true, Stemming: "english"})

	tokens := tok.Tokenize("Running dogs <STOP>")
	want := []string{"run", "dog", domain.StopToken}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_UnknownStemmingLanguage(t *testing.T) {
	if _, err := NewTokenizer(Options{Stemming: "klingon"}); err == nil {
		t.Error("expected an error for an unsupported stemming language")
	}
}

func TestTokenizer_Frame(t *testing.T) {
	tok := newTokenizer(t, Options{})

	tests := []struct {
		order int
		want  domain.Sentence
	}{
		{1, domain.Sentence{"HDTV", ".", domain.StopToken}},
		{2, domain.Sentence{domain.StartToken, "HDTV", ".", domain.StopToken}},
		{3, domain.Sentence{domain.StartToken, domain.StartToken, "HDTV", ".", domain.StopToken}},
	}
	for _, tt := range tests {
		got := tok.Frame("HDTV .", tt.order)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("order %d: expected %v, got %v", tt.order, tt.want, got)
		}
		if !reflect.DeepEqual(got.Content(), []string{"HDTV", "."}) {
			t.Errorf("order %d: unexpected content %v", tt.order, got.Content())
		}
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := newTokenizer(t, Options{})

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	got := tok.Frame("   ", 2)
	want := domain.Sentence{domain.StartToken, domain.StopToken}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
