package textprep_test

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/textprep/pkg/textprep"
)

type sliceSource struct {
	chunks [][]textprep.Record
	err    error
}

func (s *sliceSource) Next() ([]textprep.Record, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

type collectSink struct {
	got    []textprep.Record
	closed bool
}

func (s *collectSink) Write(recs []textprep.Record) error {
	s.got = append(s.got, recs...)
	return nil
}

func (s *collectSink) Close() error {
	s.closed = true
	return nil
}

func TestRunStream(t *testing.T) {
	t.Parallel()
	src := &sliceSource{chunks: [][]textprep.Record{
		textprep.TextRecords([]string{"a b", "c"}),
		textprep.TextRecords([]string{"d e f"}),
	}}
	sink := &collectSink{}

	res, err := textprep.RunStream(context.Background(), newPipeline(t), []string{"upper", "split"}, src, sink)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Chunks)
	assert.Empty(t, res.Failures)
	assert.True(t, sink.closed)
	assert.Equal(t, []textprep.Record{[]string{"A", "B"}, []string{"C"}, []string{"D", "E", "F"}}, sink.got)
}

func TestRunStreamErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown step", func(t *testing.T) {
		src := &sliceSource{chunks: [][]textprep.Record{textprep.TextRecords([]string{"a"})}}
		sink := &collectSink{}
		_, err := textprep.RunStream(context.Background(), newPipeline(t), []string{"missing"}, src, sink)
		assert.ErrorIs(t, err, textprep.ErrStepNotFound)
		assert.Len(t, src.chunks, 1, "no chunk is read before steps resolve")
		assert.True(t, sink.closed)
	})

	t.Run("record index spans chunks", func(t *testing.T) {
		src := &sliceSource{chunks: [][]textprep.Record{
			textprep.TextRecords([]string{"a", "b"}),
			textprep.TextRecords([]string{"c", "x"}),
		}}
		res, err := textprep.RunStream(context.Background(), newPipeline(t), []string{"fail-on-x"}, src, &collectSink{})
		assert.Equal(t, 2, res.Processed)
		var terr *textprep.TransformError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, 3, terr.Index)
	})

	t.Run("source error", func(t *testing.T) {
		src := &sliceSource{err: errors.New("disk gone")}
		_, err := textprep.RunStream(context.Background(), newPipeline(t), []string{"upper"}, src, &collectSink{})
		assert.EqualError(t, err, "read chunk: disk gone")
	})

	t.Run("cancelled between chunks", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &sliceSource{chunks: [][]textprep.Record{textprep.TextRecords([]string{"a"})}}
		res, err := textprep.RunStream(ctx, newPipeline(t), []string{"upper"}, src, &collectSink{})
		var cerr *textprep.CancelledError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, -1, cerr.Position)
		assert.ErrorIs(t, err, context.Canceled)
		assert.EqualError(t, err, "pipeline cancelled: context canceled")
		assert.Zero(t, res.Processed)
	})
}

func TestRunStreamLenientReportsFailures(t *testing.T) {
	t.Parallel()
	src := &sliceSource{chunks: [][]textprep.Record{
		textprep.TextRecords([]string{"a", "x1"}),
		textprep.TextRecords([]string{"c", "x2", "e"}),
	}}
	sink := &collectSink{}

	res, err := textprep.RunStream(context.Background(), newPipeline(t, textprep.WithLenient(true)),
		[]string{"fail-on-x", "suffix"}, src, sink)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, 2, res.Chunks)
	assert.Equal(t, []textprep.Record{"a!", "x1", "c!", "x2", "e!"}, sink.got)

	require.Len(t, res.Failures, 2)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, 3, res.Failures[1].Index, "index counts from the start of the stream")
	for _, f := range res.Failures {
		assert.Equal(t, "fail-on-x", f.Step)
		assert.ErrorIs(t, f, errBoom)
	}
}
