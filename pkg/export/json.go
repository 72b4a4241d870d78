package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dnsperf-analyzer.io/pkg/benchmark"
)

// WriteJSON saves res as indented JSON to <dir>/<name>.json and returns the path
func WriteJSON(dir, name string, res benchmark.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", res.Source, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
