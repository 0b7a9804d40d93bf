package config

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	osc "github.com/reoring/oscconnect"
)

// SchemaSource is a custom output schema in its JSON form. In YAML it may be
// written either as a JSON string or as an inline mapping.
type SchemaSource struct {
	Raw []byte
}

// IsZero reports whether no custom schema was given.
func (s SchemaSource) IsZero() bool { return len(s.Raw) == 0 }

// Parse decodes the schema.
func (s SchemaSource) Parse() (*osc.Schema, error) { return osc.ParseSchema(s.Raw) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SchemaSource) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var str string
		if err := value.Decode(&str); err != nil {
			return err
		}
		s.Raw = []byte(str)
		return nil
	}
	var node any
	if err := value.Decode(&node); err != nil {
		return err
	}
	raw, err := json.Marshal(normalizeYAML(node))
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	s.Raw = raw
	return nil
}

// MarshalYAML keeps the schema as a JSON string.
func (s SchemaSource) MarshalYAML() (any, error) {
	if s.IsZero() {
		return nil, nil
	}
	return string(s.Raw), nil
}

// normalizeYAML converts map[any]any from YAML into JSON-compatible maps.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}
