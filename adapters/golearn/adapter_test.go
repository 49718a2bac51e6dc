package golearn

import (
	"testing"

	"github.com/sjwhitworth/golearn/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/textprep/pkg/textprep"
)

func TestBagOfWords(t *testing.T) {
	t.Parallel()
	column := []textprep.Record{
		[]string{"great", "movie", "great"},
		[]string{"bad", "movie"},
		"great fun",
	}
	inst, err := BagOfWords(column, []string{"pos", "neg", "pos"}, 2)
	require.NoError(t, err)

	cols, rows := inst.Size()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols, "two features plus the label")

	attrs := inst.AllAttributes()
	assert.Equal(t, "great", attrs[0].GetName())
	assert.Equal(t, "movie", attrs[1].GetName())

	spec, err := inst.GetAttribute(attrs[0])
	require.NoError(t, err)
	assert.Equal(t, 2.0, base.UnpackBytesToFloat(inst.Get(spec, 0)))
	assert.Equal(t, 0.0, base.UnpackBytesToFloat(inst.Get(spec, 1)))
	assert.Equal(t, 1.0, base.UnpackBytesToFloat(inst.Get(spec, 2)))

	classes := inst.AllClassAttributes()
	require.Len(t, classes, 1)
	assert.Equal(t, LabelAttribute, classes[0].GetName())
	assert.Equal(t, "neg", base.GetClass(inst, 1))
}

func TestBagOfWordsErrors(t *testing.T) {
	t.Parallel()
	_, err := BagOfWords([]textprep.Record{"a"}, []string{"x", "y"}, 10)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = BagOfWords([]textprep.Record{[]string{"a"}, 7}, nil, 10)
	assert.ErrorIs(t, err, textprep.ErrShapeMismatch)

	_, err = BagOfWords([]textprep.Record{""}, nil, 10)
	assert.Error(t, err)
}

func TestBagOfWordsWithoutLabels(t *testing.T) {
	t.Parallel()
	inst, err := BagOfWords([]textprep.Record{[]string{"a", "b"}}, nil, 0)
	require.NoError(t, err)
	cols, rows := inst.Size()
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1, rows)
	assert.Empty(t, inst.AllClassAttributes())
}
