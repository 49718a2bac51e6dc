package parquetio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/wdm0006/textprep/pkg/table"
)

// columnReadParallelism is the number of goroutines the column reader may use
// to decode pages.
const columnReadParallelism = 4

// ReadColumn decodes a single column as text without touching the others.
// Nulls become "". Only flat (non-repeated) columns are supported.
func ReadColumn(path, column string) ([]string, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fr.Close() }()

	pr, err := reader.NewParquetColumnReader(fr, columnReadParallelism)
	if err != nil {
		return nil, errors.Wrapf(err, "parquet: open %s", path)
	}
	defer pr.ReadStop()

	var leaves []string
	for _, el := range pr.Footer.Schema[1:] {
		if el.GetNumChildren() == 0 {
			leaves = append(leaves, el.GetName())
		}
	}
	index := -1
	for i, name := range leaves {
		if name == column {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.Wrapf(table.ErrColumnNotFound, "%q (have %v)", column, leaves)
	}

	num := pr.GetNumRows()
	values, _, _, err := pr.ReadColumnByIndex(int64(index), num)
	if err != nil {
		return nil, errors.Wrapf(err, "parquet: read column %q", column)
	}
	out := make([]string, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case nil:
		case string:
			out[i] = t
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out, nil
}
