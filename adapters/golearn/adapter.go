// Package golearn converts processed token columns into golearn
// DenseInstances so they can feed github.com/sjwhitworth/golearn
// classifiers.
package golearn

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/textprep/pkg/profile"
	"github.com/wdm0006/textprep/pkg/textprep"
)

// LabelAttribute is the name of the class attribute added by BagOfWords.
const LabelAttribute = "label"

var ErrLengthMismatch = errors.New("labels and records differ in length")

// Vocabulary returns the maxFeatures most frequent tokens of column, or
// every token when maxFeatures <= 0.
func Vocabulary(column []textprep.Record, maxFeatures int) []string {
	if maxFeatures <= 0 {
		maxFeatures = math.MaxInt
	}
	c := profile.NewCollector(maxFeatures)
	c.Consume(column)
	top := c.Top()
	out := make([]string, len(top))
	for i, tc := range top {
		out[i] = tc.Token
	}
	return out
}

// BagOfWords builds one float attribute per vocabulary token holding its
// count in each record. Text records are split on white space. When labels
// is non-nil a categorical class attribute named "label" is appended.
func BagOfWords(column []textprep.Record, labels []string, maxFeatures int) (*base.DenseInstances, error) {
	if labels != nil && len(labels) != len(column) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d labels for %d records", len(labels), len(column))
	}
	vocab := Vocabulary(column, maxFeatures)
	if len(vocab) == 0 {
		return nil, errors.New("bag of words: empty vocabulary")
	}

	inst := base.NewDenseInstances()
	index := make(map[string]int, len(vocab))
	specs := make([]base.AttributeSpec, len(vocab))
	for i, tok := range vocab {
		index[tok] = i
		specs[i] = inst.AddAttribute(base.NewFloatAttribute(tok))
	}
	var class base.Attribute
	var classSpec base.AttributeSpec
	if labels != nil {
		ca := new(base.CategoricalAttribute)
		ca.SetName(LabelAttribute)
		class = ca
		classSpec = inst.AddAttribute(ca)
	}
	if err := inst.Extend(len(column)); err != nil {
		return nil, err
	}

	counts := make([]float64, len(vocab))
	for r, rec := range column {
		toks, err := tokensOf(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", r)
		}
		clear(counts)
		for _, t := range toks {
			if i, ok := index[t]; ok {
				counts[i]++
			}
		}
		for i, n := range counts {
			inst.Set(specs[i], r, base.PackFloatToBytes(n))
		}
		if class != nil {
			inst.Set(classSpec, r, class.GetSysValFromString(labels[r]))
		}
	}
	if class != nil {
		if err := inst.AddClassAttribute(class); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func tokensOf(rec textprep.Record) ([]string, error) {
	switch v := rec.(type) {
	case []string:
		return v, nil
	case string:
		return strings.Fields(v), nil
	}
	return nil, errors.Wrapf(textprep.ErrShapeMismatch, "expected []string, got %T", rec)
}
