package text

import (
	"context"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// englishLemmas loads the English dictionary once, on first use.
var englishLemmas = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// Lemmatizer reduces tokens to their dictionary form with golem's English
// dictionary. Unlike Stemming it only produces real words; tokens the
// dictionary does not know are kept as they are. It only accepts token lists.
type Lemmatizer struct{}

func (Lemmatizer) Name() string { return StepLemmatization }

func (Lemmatizer) Description() string { return "reduce words to their dictionary form" }

func (Lemmatizer) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	lem, err := englishLemmas()
	if err != nil {
		return nil, errors.Wrap(err, "load english dictionary")
	}
	return textprep.Tokens(func(toks []string) []string {
		out := make([]string, len(toks))
		for i, tok := range toks {
			out[i] = lem.Lemma(tok)
		}
		return out
	})(ctx, rec)
}

// Lemma returns the dictionary form of word. Known words match case
// insensitively and come back lowercase.
func Lemma(word string) (string, error) {
	lem, err := englishLemmas()
	if err != nil {
		return "", errors.Wrap(err, "load english dictionary")
	}
	return lem.Lemma(word), nil
}
