package loader

import (
	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/io/csvio"
	"github.com/wdm0006/textprep/pkg/io/jsonlio"
	"github.com/wdm0006/textprep/pkg/table"
	"github.com/wdm0006/textprep/pkg/textprep"
)

type frameReader interface {
	Next() (*table.Frame, error)
	Schema() table.Schema
	Close() error
}

// ColumnStream yields chunks of one text column. It implements
// textprep.ChunkSource.
type ColumnStream struct {
	r      frameReader
	column string
}

// OpenStream opens location for chunked reading of column. CSV and JSONL
// files are supported. The caller closes the stream.
func OpenStream(location, column string, chunkSize int, opt Options) (*ColumnStream, error) {
	if err := exists(location); err != nil {
		return nil, err
	}
	format, err := opt.format(location)
	if err != nil {
		return nil, err
	}
	opt = opt.withText(column)
	var r frameReader
	switch format {
	case FormatCSV:
		r, err = csvio.NewStreamReader(location, opt.csv(), chunkSize)
	case FormatJSONL:
		r, err = jsonlio.NewStreamReader(location, opt.jsonl(), chunkSize)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "streaming %s", format)
	}
	if err != nil {
		return nil, err
	}
	found := false
	for _, name := range r.Schema().Names() {
		if name == column {
			found = true
			break
		}
	}
	if !found {
		_ = r.Close()
		return nil, errors.Wrapf(table.ErrColumnNotFound, "%q (have %v)", column, r.Schema().Names())
	}
	return &ColumnStream{r: r, column: column}, nil
}

func (s *ColumnStream) Next() ([]textprep.Record, error) {
	f, err := s.r.Next()
	if err != nil {
		return nil, err
	}
	col, err := f.TextColumn(s.column)
	if err != nil {
		return nil, err
	}
	return textprep.TextRecords(col), nil
}

func (s *ColumnStream) Close() error { return s.r.Close() }
