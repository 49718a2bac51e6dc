package text

import (
	"context"
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// Stemmer reduces tokens to their English Snowball (Porter2) stem
// ("connection" -> "connect", "happy" -> "happi"). Stems need not be words.
// Tokens are lowercased first. It only accepts token lists.
type Stemmer struct{}

func (Stemmer) Name() string { return StepStemming }

func (Stemmer) Description() string { return "reduce words to their Snowball stem" }

func (Stemmer) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.Tokens(func(toks []string) []string {
		out := make([]string, len(toks))
		for i, tok := range toks {
			out[i] = Stem(tok)
		}
		return out
	})(ctx, rec)
}

// Stem returns the English Snowball stem of a single word. Stop words are
// stemmed too so the step does not depend on the stop word list.
func Stem(word string) string {
	return english.Stem(strings.ToLower(word), true)
}
