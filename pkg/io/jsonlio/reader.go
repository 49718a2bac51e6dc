package jsonlio

import (
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	iox "github.com/wdm0006/textprep/pkg/io/ioutils"
	"github.com/wdm0006/textprep/pkg/table"
)

type ReaderOptions struct {
	SampleRows int
	// TextColumns are read as raw strings and skip kind inference.
	TextColumns []string
}

// Reader decodes newline-delimited JSON objects, one row per object.
type Reader struct {
	dec  *json.Decoder
	rc   io.Closer
	opt  ReaderOptions
	buf  []map[string]any
	rows int
}

// Open opens a JSONL file (optionally gzip compressed). The caller closes it.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.rc = rc
	return r, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return &Reader{dec: json.NewDecoder(r), opt: opt}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// InferSchema samples objects to find the keys and their kinds. Columns are
// sorted by key since JSON objects carry no column order.
func (r *Reader) InferSchema() (table.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	keysSet := map[string]struct{}{}
	for len(r.buf) < max {
		m, err := r.decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kinds := inferKinds(r.buf, keys)
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = table.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema.WithText(r.opt.TextColumns...), nil
}

func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for {
		m, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
}

func (r *Reader) next() (map[string]any, error) {
	if len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		return m, nil
	}
	return r.decode()
}

func (r *Reader) decode() (map[string]any, error) {
	var m map[string]any
	if err := r.dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "jsonl: object %d", r.rows)
	}
	r.rows++
	return m, nil
}

func setRowFromMap(f *table.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			f.SetText(row, cs, t)
		case float64:
			switch cs.Type {
			case table.KindString:
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			case table.KindFloat, table.KindInt:
				_ = f.SetCell(row, cs.Name, t)
			}
		case bool:
			switch cs.Type {
			case table.KindBool:
				_ = f.SetCell(row, cs.Name, t)
			case table.KindString:
				f.SetText(row, cs, strconv.FormatBool(t))
			}
		default:
			if cs.Type == table.KindString {
				// fallback to JSON encoding
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(sample []map[string]any, keys []string) []table.Kind {
	kinds := make([]table.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range sample {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case float64:
				nNum++
				if float64(int64(t)) == t {
					nInt++
				}
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					continue
				}
				if numre.MatchString(s) {
					nNum++
					if !strings.ContainsAny(s, ".eE") {
						nInt++
					}
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case nBool > nNum && nBool >= nStr:
			kinds[i] = table.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kinds[i] = table.KindInt
			} else {
				kinds[i] = table.KindFloat
			}
		default:
			kinds[i] = table.KindString
		}
	}
	return kinds
}
