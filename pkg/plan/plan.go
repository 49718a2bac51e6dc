// Package plan reads saved pipeline invocations. A plan names the dataset
// (or a file), the text column and the ordered steps to apply:
//
//	dataset: imdb
//	column: review
//	steps:
//	  - Text Cleaning
//	  - Tokenization
//	  - name: Stemming
//	    disabled: true
//
// Plans may be written in YAML, TOML or JSON.
package plan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wdm0006/textprep/pkg/textprep"
	"github.com/wdm0006/textprep/pkg/transform/text"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported plan format")

// StepRef is one entry of a plan's step list. It can be written as a bare
// step name or as a mapping with a name.
type StepRef struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Disabled bool   `yaml:"disabled,omitempty" toml:"disabled,omitempty" json:"disabled,omitempty"`
}

func (s *StepRef) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err == nil {
		s.Name = name
		return nil
	}
	type raw StepRef
	return value.Decode((*raw)(s))
}

func (s *StepRef) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		s.Name = name
		return nil
	}
	type raw StepRef
	return json.Unmarshal(b, (*raw)(s))
}

type Plan struct {
	Name        string            `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Dataset     string            `yaml:"dataset,omitempty" toml:"dataset,omitempty" json:"dataset,omitempty"`
	File        string            `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
	Column      string            `yaml:"column" toml:"column" json:"column"`
	LabelColumn string            `yaml:"label_column,omitempty" toml:"label_column,omitempty" json:"label_column,omitempty"`
	Steps       []StepRef         `yaml:"steps" toml:"-" json:"steps"`
	CustomSteps []text.CustomStep `yaml:"custom_steps,omitempty" toml:"custom_steps,omitempty" json:"custom_steps,omitempty"`
}

// StepNames returns the enabled step names in order.
func (p *Plan) StepNames() []string {
	out := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		if !s.Disabled {
			out = append(out, s.Name)
		}
	}
	return out
}

// Validate checks that the plan names a source and column and that every
// enabled step resolves in reg. Step positions in the returned error count
// enabled steps only, matching what the executor would report. The plan's
// custom steps must already be registered in reg.
func (p *Plan) Validate(reg *textprep.Registry) error {
	if (p.Dataset == "") == (p.File == "") {
		return errors.New("plan: exactly one of dataset or file is required")
	}
	if p.Column == "" {
		return errors.New("plan: column is required")
	}
	names := p.StepNames()
	for i, name := range names {
		if name == "" {
			return errors.Errorf("plan: step %d has no name", i)
		}
	}
	return reg.Validate(names)
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

func Load(path string) (*Plan, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read plan")
	}
	p, err := Parse(b, f)
	if err != nil {
		return nil, errors.Wrapf(err, "plan %s", path)
	}
	return p, nil
}

func Parse(data []byte, f Format) (*Plan, error) {
	var p Plan
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, errors.Wrap(err, "parse yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(err, "parse json")
		}
	case FormatTOML:
		if err := parseTOML(data, &p); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", f)
	}
	return &p, nil
}

// TOML arrays may mix strings and inline tables, so steps are decoded
// loosely and converted afterwards.
func parseTOML(data []byte, p *Plan) error {
	if err := toml.Unmarshal(data, p); err != nil {
		return errors.Wrap(err, "parse toml")
	}
	var loose struct {
		Steps []any `toml:"steps"`
	}
	if err := toml.Unmarshal(data, &loose); err != nil {
		return errors.Wrap(err, "parse toml")
	}
	p.Steps = make([]StepRef, 0, len(loose.Steps))
	for i, v := range loose.Steps {
		switch s := v.(type) {
		case string:
			p.Steps = append(p.Steps, StepRef{Name: s})
		case map[string]any:
			name, _ := s["name"].(string)
			disabled, _ := s["disabled"].(bool)
			p.Steps = append(p.Steps, StepRef{Name: name, Disabled: disabled})
		default:
			return errors.Errorf("parse toml: step %d: unexpected %T", i, v)
		}
	}
	return nil
}
