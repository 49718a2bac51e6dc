// Package text holds the standard text-preprocessing steps and the helpers
// that register them in a textprep.Registry.
package text

import (
	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/textprep"
)

// Registered step names.
const (
	StepTextCleaning  = "Text Cleaning"
	StepTokenization  = "Tokenization"
	StepStopWords     = "Stop Words Removal"
	StepLemmatization = "Lemmatization"
	StepStemming      = "Stemming"
	StepLowercase     = "Lowercase"
	StepTrim          = "Trim Whitespace"
)

// Step is a transform that knows its registry name.
type Step interface {
	textprep.Transform
	Name() string
	Description() string
}

// Defaults returns the standard steps in listing order.
func Defaults() []Step {
	return []Step{
		Clean{},
		Tokenizer{},
		NewStopWords(),
		Lemmatizer{},
		Stemmer{},
		Lower{},
		Trim{},
	}
}

// Register adds steps to reg under their own names.
func Register(reg *textprep.Registry, steps ...Step) {
	for _, s := range steps {
		reg.Register(s.Name(), s, textprep.WithDescription(s.Description()))
	}
}

// NewRegistry returns a registry holding the standard steps.
func NewRegistry() *textprep.Registry {
	reg := textprep.NewRegistry()
	Register(reg, Defaults()...)
	return reg
}

// Kinds of user-defined steps.
const (
	KindRegexReplace = "regex_replace"
	KindMapValues    = "map_values"
)

var ErrUnknownKind = errors.New("unknown custom step kind")

// CustomStep describes a step defined in configuration rather than code.
type CustomStep struct {
	Name    string            `koanf:"name" yaml:"name" toml:"name" json:"name"`
	Kind    string            `koanf:"kind" yaml:"kind" toml:"kind" json:"kind"`
	Pattern string            `koanf:"pattern" yaml:"pattern,omitempty" toml:"pattern,omitempty" json:"pattern,omitempty"`
	Replace string            `koanf:"replace" yaml:"replace,omitempty" toml:"replace,omitempty" json:"replace,omitempty"`
	Map     map[string]string `koanf:"map" yaml:"map,omitempty" toml:"map,omitempty" json:"map,omitempty"`
}

// Build turns c into a Step.
func (c CustomStep) Build() (Step, error) {
	if c.Name == "" {
		return nil, errors.New("custom step: name is required")
	}
	switch c.Kind {
	case KindRegexReplace:
		rr, err := NewRegexReplace(c.Name, c.Pattern, c.Replace)
		if err != nil {
			return nil, err
		}
		return rr, nil
	case KindMapValues:
		return &MapValues{Step: c.Name, Map: c.Map}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "custom step %q: %q", c.Name, c.Kind)
	}
}

// RegisterCustom builds and registers every custom step. Nothing is
// registered if any of them is invalid.
func RegisterCustom(reg *textprep.Registry, custom []CustomStep) error {
	steps := make([]Step, 0, len(custom))
	for _, c := range custom {
		s, err := c.Build()
		if err != nil {
			return err
		}
		steps = append(steps, s)
	}
	Register(reg, steps...)
	return nil
}
