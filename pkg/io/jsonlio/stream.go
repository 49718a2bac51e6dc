package jsonlio

import (
	"io"

	"github.com/wdm0006/textprep/pkg/table"
)

// StreamReader reads JSONL into Frame chunks of up to chunkSize rows.
type StreamReader struct {
	r         *Reader
	schema    table.Schema
	chunkSize int
}

func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	schema, err := r.InferSchema()
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	return &StreamReader{r: r, schema: schema, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Next() (*table.Frame, error) {
	f := table.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		m, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	return f, nil
}

func (s *StreamReader) Schema() table.Schema { return s.schema }

func (s *StreamReader) Close() error { return s.r.Close() }
