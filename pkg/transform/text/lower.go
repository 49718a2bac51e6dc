package text

import (
	"context"
	"strings"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// Lower lowercases text, or every token of a token list.
type Lower struct{}

func (Lower) Name() string { return StepLowercase }

func (Lower) Description() string { return "lowercase text or tokens" }

func (Lower) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.TextOrTokens(strings.ToLower)(ctx, rec)
}
