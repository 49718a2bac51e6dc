package text

import (
	"context"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// RegexReplace rewrites every match of a pattern. It works on text and on
// tokens; tokens rewritten to the empty string are dropped.
type RegexReplace struct {
	Step    string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

// NewRegexReplace compiles pattern up front so a bad expression is reported
// at registration rather than halfway through a run.
func NewRegexReplace(name, pattern, replace string) (*RegexReplace, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "step %q: compile pattern", name)
	}
	return &RegexReplace{Step: name, Pattern: pattern, Replace: replace, re: re}, nil
}

func (t *RegexReplace) Name() string { return t.Step }

func (t *RegexReplace) Description() string { return "replace " + t.Pattern + " with " + strconv.Quote(t.Replace) }

func (t *RegexReplace) Apply(ctx context.Context, rec textprep.Record) (textprep.Record, error) {
	return textprep.TextOrTokens(func(s string) string {
		return t.re.ReplaceAllString(s, t.Replace)
	})(ctx, rec)
}
