package oscconnect

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

var primitiveByName = map[string]Type{
	"null":    TypeNull,
	"boolean": TypeBoolean,
	"int":     TypeInt,
	"long":    TypeLong,
	"float":   TypeFloat,
	"double":  TypeDouble,
	"string":  TypeString,
	"bytes":   TypeBytes,
}

// ParseSchema reads the Avro-style JSON form of a schema. A two-branch union
// with "null" becomes a nullable wrapper. Failures are returned as Issues.
func ParseSchema(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Offset: -1}}
	}
	return parseSchemaNode(raw, "")
}

func parseSchemaNode(raw any, path string) (*Schema, error) {
	switch v := raw.(type) {
	case string:
		t, ok := primitiveByName[v]
		if !ok {
			return nil, schemaIssue(path, CodeUnsupportedType, fmt.Sprintf("unknown type name %q", v))
		}
		return primitive(t), nil
	case []any:
		branches := make([]*Schema, 0, len(v))
		for i, b := range v {
			s, err := parseSchemaNode(b, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			branches = append(branches, s)
		}
		if len(branches) == 2 {
			if branches[1].Type == TypeNull {
				return NullableOf(branches[0]), nil
			}
			if branches[0].Type == TypeNull {
				return NullableOf(branches[1]), nil
			}
		}
		return UnionOf(branches...), nil
	case map[string]any:
		return parseSchemaObject(v, path)
	}
	return nil, schemaIssue(path, CodeInvalidType, fmt.Sprintf("expected a type name, union or object, got %T", raw))
}

func parseSchemaObject(m map[string]any, path string) (*Schema, error) {
	typ, ok := m["type"]
	if !ok {
		return nil, schemaIssue(path, CodeRequired, "missing \"type\"")
	}
	name, _ := typ.(string)
	switch name {
	case "record":
		return parseRecord(m, path)
	case "array":
		items, err := parseSchemaNode(m["items"], path+"/items")
		if err != nil {
			return nil, err
		}
		return ArrayOf(items), nil
	case "map":
		values, err := parseSchemaNode(m["values"], path+"/values")
		if err != nil {
			return nil, err
		}
		s := MapOf(values)
		if k, ok := m["keys"]; ok {
			if s.Keys, err = parseSchemaNode(k, path+"/keys"); err != nil {
				return nil, err
			}
		}
		return s, nil
	case "bytes":
		if lt, _ := m["logicalType"].(string); lt == "decimal" {
			p, err := intProp(m, "precision", path)
			if err != nil {
				return nil, err
			}
			sc := 0
			if _, ok := m["scale"]; ok {
				if sc, err = intProp(m, "scale", path); err != nil {
					return nil, err
				}
			}
			return Decimal(p, sc), nil
		}
		return Bytes(), nil
	case "":
		// {"type": {...}} or {"type": [...]}
		return parseSchemaNode(typ, path+"/type")
	}
	return parseSchemaNode(name, path+"/type")
}

func parseRecord(m map[string]any, path string) (*Schema, error) {
	name, _ := m["name"].(string)
	rawFields, ok := m["fields"].([]any)
	if !ok {
		return nil, schemaIssue(path+"/fields", CodeRequired, "record requires a \"fields\" array")
	}
	fields := make([]Field, 0, len(rawFields))
	for i, rf := range rawFields {
		fp := path + "/fields/" + strconv.Itoa(i)
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, schemaIssue(fp, CodeInvalidType, "field must be an object")
		}
		fname, _ := fm["name"].(string)
		if fname == "" {
			return nil, schemaIssue(fp+"/name", CodeRequired, "field name is required")
		}
		fs, err := parseSchemaNode(fm["type"], fp+"/type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, NewField(fname, fs))
	}
	return RecordOf(name, fields...), nil
}

func intProp(m map[string]any, key, path string) (int, error) {
	n, ok := m[key].(json.Number)
	if !ok {
		return 0, schemaIssue(path+"/"+key, CodeInvalidType, key+" must be an integer")
	}
	i, err := n.Int64()
	if err != nil {
		return 0, schemaIssue(path+"/"+key, CodeInvalidType, key+" must be an integer")
	}
	return int(i), nil
}

func schemaIssue(path, code, msg string) error {
	if path == "" {
		path = "/"
	}
	return Issues{{Path: path, Code: code, Message: msg, Offset: -1}}
}

type recordJSON struct {
	Type   string      `json:"type"`
	Name   string      `json:"name,omitempty"`
	Fields []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Name string  `json:"name"`
	Type *Schema `json:"type"`
}

type decimalJSON struct {
	Type        string `json:"type"`
	LogicalType string `json:"logicalType"`
	Precision   int    `json:"precision"`
	Scale       int    `json:"scale"`
}

type arrayJSON struct {
	Type  string  `json:"type"`
	Items *Schema `json:"items"`
}

type mapJSON struct {
	Type   string  `json:"type"`
	Keys   *Schema `json:"keys,omitempty"`
	Values *Schema `json:"values"`
}

// MarshalJSON renders the Avro-style JSON form accepted by ParseSchema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	switch s.Type {
	case TypeRecord:
		out := recordJSON{Type: "record", Name: s.Name, Fields: make([]fieldJSON, 0, len(s.Fields))}
		for _, f := range s.Fields {
			out.Fields = append(out.Fields, fieldJSON{Name: f.Name, Type: f.Schema})
		}
		return json.Marshal(out)
	case TypeArray:
		return json.Marshal(arrayJSON{Type: "array", Items: s.Items})
	case TypeMap:
		out := mapJSON{Type: "map", Values: s.Values}
		if s.Keys != nil && s.Keys.Type != TypeString {
			out.Keys = s.Keys
		}
		return json.Marshal(out)
	case TypeUnion:
		return json.Marshal(s.Branches)
	case TypeNullable:
		return json.Marshal([]any{s.Inner, "null"})
	case TypeBytes:
		if s.Logical == LogicalDecimal {
			return json.Marshal(decimalJSON{Type: "bytes", LogicalType: "decimal", Precision: s.Precision, Scale: s.Scale})
		}
	}
	return json.Marshal(s.Type.String())
}
