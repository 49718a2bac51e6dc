package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	iox "github.com/wdm0006/textprep/pkg/io/ioutils"
	"github.com/wdm0006/textprep/pkg/table"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	// TextColumns are read as raw strings and skip kind inference.
	TextColumns []string
}

type Reader struct {
	r     *csv.Reader
	rc    io.Closer
	opt   ReaderOptions
	buf   [][]string
	names []string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (optionally gzip compressed) and returns a Reader.
// The caller closes it.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(rc)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		opt.Delimiter = sniffDelimiter(sample)
	}
	r := NewReaderFrom(br, opt)
	r.rc = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	// review text is free-form: stray quotes and ragged rows are repaired
	// and counted rather than rejected.
	rr.LazyQuotes = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// Names returns the column names found by InferSchema.
func (r *Reader) Names() []string { return r.names }

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (table.Schema, error) {
	rec, err := r.r.Read()
	if err != nil {
		return table.Schema{}, errors.Wrap(err, "csv: read header")
	}
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, rec)
	}

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(r.buf) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Schema{}, errors.Wrap(err, "csv: sample rows")
		}
		r.buf = append(r.buf, rr)
	}

	kinds := inferKinds(r.buf, len(names))
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = table.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	r.names = names
	return schema.WithText(r.opt.TextColumns...), nil
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		rec, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
}

// next drains records buffered during inference before reading on.
func (r *Reader) next() ([]string, error) {
	if len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		return rec, nil
	}
	rec, err := r.r.Read()
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "csv: read")
	}
	return rec, err
}

func (r *Reader) appendRecord(f *table.Frame, rec []string) error {
	cols := f.Schema().Columns
	switch {
	case len(rec) > len(cols):
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows(), len(cols), len(rec))
		}
	case len(rec) < len(cols):
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows(), len(cols), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range cols {
		if i >= len(rec) {
			break
		}
		f.SetText(row, cs, rec[i])
	}
	return nil
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(rows [][]string, ncol int) []table.Kind {
	kinds := make([]table.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, str := 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			} else {
				lv := strings.ToLower(v)
				if lv == "true" || lv == "false" {
					continue
				}
				str++
			}
		}
		// prefer float over int to be permissive
		if num > str {
			if integer == num {
				kinds[c] = table.KindInt
			} else {
				kinds[c] = table.KindFloat
			}
		} else {
			kinds[c] = table.KindString
		}
	}
	return kinds
}

// sniffDelimiter picks the candidate that occurs most often in the first
// line. Review text is full of commas, so later lines are not counted.
func sniffDelimiter(sample []byte) rune {
	if i := strings.IndexByte(string(sample), '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', 0
	for _, c := range []rune{',', '\t', ';', '|'} {
		if n := strings.Count(string(sample), string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
