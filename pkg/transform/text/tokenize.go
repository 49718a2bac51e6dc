package text

import (
	"context"
	"strings"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// Tokenizer splits text on runs of white space. It turns a string record into
// a []string record and rejects anything else.
type Tokenizer struct{}

func (Tokenizer) Name() string { return StepTokenization }

func (Tokenizer) Description() string { return "split text into white-space separated tokens" }

func (Tokenizer) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.Tokenize(strings.Fields)(ctx, rec)
}
