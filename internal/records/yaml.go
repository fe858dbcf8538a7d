package records

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// readYAML reads a YAML document holding a sequence of mappings.
func readYAML(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrSourceFormat, path, err)
	}

	recs := make([]types.Record, 0, len(docs))
	for _, doc := range docs {
		rec := make(types.Record, len(doc))
		for k, v := range doc {
			rec[k] = normalizeValue(v)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
