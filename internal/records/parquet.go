package records

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/scorecard/schema"
	"github.com/parquet-go/parquet-go"
)

// parquetBatch is how many rows are pulled from a row group at a time.
const parquetBatch = 256

// readParquet turns each row of a flat Parquet file into a record keyed by
// column name. Nested columns are keyed by their dotted path.
func readParquet(r io.ReaderAt, size int64) ([]schema.InputRecord, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet records: %w", err)
	}

	columns := file.Schema().Columns()
	names := make([]string, len(columns))
	for i, path := range columns {
		names[i] = strings.Join(path, ".")
	}

	out := make([]schema.InputRecord, 0, file.NumRows())
	buf := make([]parquet.Row, parquetBatch)
	for _, group := range file.RowGroups() {
		rows := group.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				out = append(out, parquetRecord(row, names))
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parquetRecord(row parquet.Row, names []string) schema.InputRecord {
	record := make(schema.InputRecord, len(names))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(names) {
			continue
		}
		if _, seen := record[names[col]]; seen {
			// Repeated values cannot be scored; keep the first.
			continue
		}
		record[names[col]] = parquetValue(v)
	}
	return record
}

func parquetValue(v parquet.Value) any {
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
	default:
		return nil
	}
}
