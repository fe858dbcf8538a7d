package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// readCSV reads a CSV file whose first row names the columns.
func readCSV(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header of %s: %v", types.ErrSourceFormat, path, err)
	}

	var recs []types.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", types.ErrSourceFormat, path, err)
		}
		recs = append(recs, fromHeader(header, row))
	}
	return recs, nil
}

// writeCSV writes a header row followed by one line per result row.
func writeCSV(path string, res *types.Result) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(res.Columns); err != nil {
			return err
		}
		for _, row := range res.Strings() {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
