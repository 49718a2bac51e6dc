package parquetio

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/textprep/pkg/table"
)

type Reader struct {
	file   *os.File
	pf     *parquet.File
	names  []string
	schema table.Schema
	rows   []map[string]any
}

// OpenReader opens a Parquet file and decodes its rows. Column kinds are
// inferred from the first sampleRows rows.
func OpenReader(path string, sampleRows int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "parquet: open %s", path)
	}
	r := &Reader{file: f, pf: pf}
	for _, col := range pf.Schema().Columns() {
		r.names = append(r.names, strings.Join(col, "."))
	}
	if err := r.decode(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if sampleRows <= 0 {
		sampleRows = 100
	}
	r.schema = inferSchema(r.names, r.rows[:min(sampleRows, len(r.rows))])
	return r, nil
}

func (r *Reader) Close() error { return r.file.Close() }

func (r *Reader) Schema() table.Schema { return r.schema }

func (r *Reader) NumRows() int64 { return r.pf.NumRows() }

func (r *Reader) decode() error {
	buf := make([]parquet.Row, 1024)
	for _, rg := range r.pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				r.rows = append(r.rows, r.rowMap(row))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rows.Close()
				return errors.Wrap(err, "parquet: read rows")
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
	}
	return nil
}

// rowMap flattens a row to column name -> value. Repeated text values are
// joined with a space.
func (r *Reader) rowMap(row parquet.Row) map[string]any {
	m := make(map[string]any, len(r.names))
	for _, v := range row {
		name := r.names[v.Column()]
		val := valueOf(v)
		if val == nil {
			continue
		}
		if prev, ok := m[name].(string); ok {
			if s, ok := val.(string); ok {
				m[name] = prev + " " + s
				continue
			}
		}
		m[name] = val
	}
	return m
}

func valueOf(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	}
	return v.String()
}

func (r *Reader) ReadAll() (*table.Frame, error) {
	f := table.NewFrame(r.schema)
	for _, m := range r.rows {
		f.AppendNullRow()
		setRow(f, f.Rows()-1, m)
	}
	return f, nil
}

func inferSchema(keys []string, rows []map[string]any) table.Schema {
	kinds := make([]table.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range rows {
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
			case int64:
				nNum++
				nInt++
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if s == "" {
					continue
				}
				if x, err := strconv.ParseFloat(s, 64); err == nil {
					nNum++
					if float64(int64(x)) == x {
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
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = table.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema
}

func setRow(f *table.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			f.SetText(row, cs, t)
		case bool:
			f.SetText(row, cs, strconv.FormatBool(t))
		case int64:
			if cs.Type == table.KindString {
				_ = f.SetCell(row, cs.Name, strconv.FormatInt(t, 10))
			} else {
				_ = f.SetCell(row, cs.Name, t)
			}
		case float64:
			if cs.Type == table.KindString {
				_ = f.SetCell(row, cs.Name, strconv.FormatFloat(t, 'g', -1, 64))
			} else {
				_ = f.SetCell(row, cs.Name, t)
			}
		}
	}
}
