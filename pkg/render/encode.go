package render

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pageviz/pkg/view"
)

// EncodeJSON encodes a projection as indented JSON.
func EncodeJSON(p view.Projection) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeYAML encodes a projection as YAML. Field names follow the JSON
// encoding so both formats describe the same document.
func EncodeYAML(p view.Projection) ([]byte, error) {
	// Round-trip through JSON so the json tags define the YAML keys and the
	// embedded node fields are flattened.
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}
