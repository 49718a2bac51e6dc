package text

import (
	"context"
	"strings"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// Trim removes leading and trailing white space. Tokens that end up empty
// are dropped.
type Trim struct{}

func (Trim) Name() string { return StepTrim }

func (Trim) Description() string { return "trim surrounding white space" }

func (Trim) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.TextOrTokens(strings.TrimSpace)(ctx, rec)
}
