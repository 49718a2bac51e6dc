// Package loader turns a dataset location into an in-memory table.
package loader

import (
	"os"

	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/io/csvio"
	iox "github.com/wdm0006/textprep/pkg/io/ioutils"
	"github.com/wdm0006/textprep/pkg/io/jsonlio"
	"github.com/wdm0006/textprep/pkg/io/parquetio"
	"github.com/wdm0006/textprep/pkg/table"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format is a supported tabular file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// Options tune how files are parsed. The zero value reads a CSV with a
// header row and a sniffed delimiter.
type Options struct {
	// Format overrides detection from the file extension.
	Format     Format
	Delimiter  rune
	NoHeader   bool
	SampleRows int
	Strict     bool
	// TextColumns are kept as raw strings instead of going through kind
	// inference. LoadColumn and OpenStream add the column they read.
	TextColumns []string
}

// DetectFormat maps a file extension to a Format, looking through ".gz".
func DetectFormat(location string) (Format, error) {
	switch iox.BaseExt(location) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".parquet":
		return FormatParquet, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", location)
}

func (o Options) format(location string) (Format, error) {
	if o.Format != "" {
		return o.Format, nil
	}
	return DetectFormat(location)
}

func (o Options) csv() csvio.ReaderOptions {
	return csvio.ReaderOptions{
		HasHeader:   !o.NoHeader,
		Delimiter:   o.Delimiter,
		SampleRows:  o.SampleRows,
		Strict:      o.Strict,
		TextColumns: o.TextColumns,
	}
}

func (o Options) jsonl() jsonlio.ReaderOptions {
	return jsonlio.ReaderOptions{SampleRows: o.SampleRows, TextColumns: o.TextColumns}
}

// withText returns o with column added to TextColumns, leaving o's slice
// untouched.
func (o Options) withText(column string) Options {
	o.TextColumns = append(append([]string(nil), o.TextColumns...), column)
	return o
}

// exists reports ErrFileNotFound rather than an empty table for a missing
// location.
func exists(location string) error {
	st, err := os.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrFileNotFound, "%s", location)
		}
		return err
	}
	if st.IsDir() {
		return errors.Wrapf(ErrFileNotFound, "%s is a directory", location)
	}
	return nil
}

// Load reads the whole table at location.
func Load(location string, opt Options) (*table.Frame, error) {
	if err := exists(location); err != nil {
		return nil, err
	}
	format, err := opt.format(location)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		r, err := csvio.Open(location, opt.csv())
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", location)
		}
		return r.ReadAll(schema)
	case FormatJSONL:
		r, err := jsonlio.Open(location, opt.jsonl())
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", location)
		}
		return r.ReadAll(schema)
	case FormatParquet:
		r, err := parquetio.OpenReader(location, opt.SampleRows)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// LoadColumn reads a single column as text. Parquet files decode only that
// column; other formats load the table and extract it with the column kept
// verbatim.
func LoadColumn(location, column string, opt Options) ([]string, error) {
	if err := exists(location); err != nil {
		return nil, err
	}
	format, err := opt.format(location)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return parquetio.ReadColumn(location, column)
	}
	f, err := Load(location, opt.withText(column))
	if err != nil {
		return nil, err
	}
	return f.TextColumn(column)
}
