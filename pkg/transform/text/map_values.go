package text

import (
	"context"
	"strconv"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// MapValues replaces whole values found in Map. For token lists every token
// is looked up on its own, which makes it a simple synonym or slang table.
type MapValues struct {
	Step string
	Map  map[string]string
}

func (t *MapValues) Name() string { return t.Step }

func (t *MapValues) Description() string {
	return "map " + strconv.Itoa(len(t.Map)) + " values"
}

func (t *MapValues) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.TextOrTokens(func(s string) string {
		if nv, ok := t.Map[s]; ok {
			return nv
		}
		return s
	})(ctx, rec)
}
