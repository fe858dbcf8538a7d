package records

import (
	"fmt"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// WriteFile exports a query result to path. Write statements carry no
// rows and are rejected.
func WriteFile(path string, format Format, res *types.Result, opts Options) error {
	if res == nil || !res.IsQuery() {
		return fmt.Errorf("nothing to export: statement returned no columns")
	}
	switch format {
	case FormatCSV:
		return writeCSV(path, res)
	case FormatJSONL:
		return writeJSONL(path, res)
	case FormatXLSX:
		return writeXLSX(path, opts.Sheet, res)
	default:
		return fmt.Errorf("%w %q for export (want csv, jsonl or xlsx)", ErrUnknownFormat, format)
	}
}
