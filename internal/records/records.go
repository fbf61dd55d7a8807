// Package records reads input records for evaluation from CSV, JSON, JSON
// lines and Parquet sources. A row that cannot be understood becomes a nil
// record so the aggregator can count it as a record error and keep going.
package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// Format identifies a record source encoding.
type Format string

// Supported record formats.
const (
	CSV       Format = "csv"
	JSON      Format = "json"  // a single array of objects
	JSONLines Format = "jsonl" // one object per line
	Parquet   Format = "parquet"
)

// Stdin is the path that reads records from standard input.
const Stdin = "-"

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 16 << 20

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".jsonl", ".ndjson":
		return JSONLines, nil
	case ".parquet":
		return Parquet, nil
	default:
		return "", fmt.Errorf("cannot tell the record format of %q. use .csv, .json, .jsonl or .parquet", path)
	}
}

// ReadFile reads every record from path. Standard input is sniffed: a
// leading '[' means a JSON array and anything else JSON lines.
func ReadFile(path string) ([]schema.InputRecord, error) {
	if path == Stdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return Read(bytes.NewReader(data), sniff(data))
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if format == Parquet {
		info, err := file.Stat()
		if err != nil {
			return nil, err
		}
		return readParquet(file, info.Size())
	}
	return Read(file, format)
}

// Read decodes all records from r.
func Read(r io.Reader, format Format) ([]schema.InputRecord, error) {
	switch format {
	case CSV:
		return readCSV(r)
	case JSON:
		return readJSONArray(r)
	case JSONLines:
		return readJSONLines(r)
	case Parquet:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return readParquet(bytes.NewReader(data), int64(len(data)))
	default:
		return nil, fmt.Errorf("unsupported record format: %s", format)
	}
}

// ParseRecord decodes a single JSON object.
func ParseRecord(data []byte) (schema.InputRecord, error) {
	record, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	return record, nil
}

func sniff(data []byte) Format {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return JSON
	}
	return JSONLines
}

// decodeObject keeps numbers as json.Number so large integers survive.
func decodeObject(data []byte) (schema.InputRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("null is not an object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	return record, nil
}

func readJSONArray(r io.Reader) ([]schema.InputRecord, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("records must be a JSON array: %w", err)
	}
	out := make([]schema.InputRecord, len(raw))
	for i, item := range raw {
		if record, err := decodeObject(item); err == nil {
			out[i] = record
		}
	}
	return out, nil
}

func readJSONLines(r io.Reader) ([]schema.InputRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []schema.InputRecord
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		record, err := decodeObject(line)
		if err != nil {
			record = nil
		}
		out = append(out, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return out, nil
}

// readCSV treats the first row as the header. Cells stay strings; the
// resolver coerces them per variable type.
func readCSV(r io.Reader) ([]schema.InputRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []schema.InputRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			out = append(out, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(row) != len(header) {
			out = append(out, nil)
			continue
		}
		record := make(schema.InputRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			record[name] = row[i]
		}
		out = append(out, record)
	}
	return out, nil
}
