// Package records reads bulk-load sources into types.Record values and
// writes query results back out. Sources and sinks are CSV, JSONL, YAML
// (read only), and XLSX files, selected by extension or by name.
package records

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Format names a file format.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// ErrUnknownFormat is returned when a format cannot be determined.
var ErrUnknownFormat = errors.New("unknown file format")

// ParseFormat resolves a format name. An empty name selects the format
// from the extension of path.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(name) {
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w %q (want csv, jsonl, yaml or xlsx)", ErrUnknownFormat, name)
	}
}

// Options tune how a source is read.
type Options struct {
	// Sheet selects the XLSX sheet; empty means the first sheet.
	Sheet string
}

// ReadFile reads every record of the source at path. Decoding failures
// wrap types.ErrSourceFormat.
func ReadFile(path string, format Format, opts Options) ([]types.Record, error) {
	switch format {
	case FormatCSV:
		return readCSV(path)
	case FormatJSONL:
		return readJSONL(path)
	case FormatYAML:
		return readYAML(path)
	case FormatXLSX:
		return readXLSX(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Read detects the format from the extension of path and reads it.
func Read(path string) ([]types.Record, error) {
	format, err := ParseFormat("", path)
	if err != nil {
		return nil, err
	}
	return ReadFile(path, format, Options{})
}

// fromHeader builds a record from a header row and a data row. Empty cells
// and cells past the end of the row are absent.
func fromHeader(header, row []string) types.Record {
	rec := make(types.Record, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if i >= len(row) || row[i] == "" {
			rec[col] = nil
			continue
		}
		rec[col] = row[i]
	}
	return rec
}

// normalizeValue converts decoded values into types database/sql accepts
// and SQLite stores the way the columns expect.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case int:
		return int64(x)
	default:
		return v
	}
}
