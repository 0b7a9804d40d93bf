package oscconnect

import (
	"fmt"
	"strconv"
)

// ValidateSchema checks the structural invariants of a record schema: the
// top-level node is a record, every record has at least one uniquely named
// field, map keys are non-nullable strings and decimals have 1 <= precision
// and 0 <= scale <= precision. All problems are collected into Issues.
func ValidateSchema(s *Schema) error {
	if s == nil {
		return Issues{{Path: "/", Code: CodeRequired, Message: "schema is required", Offset: -1}}
	}
	var iss Issues
	if s.Type != TypeRecord {
		iss = append(iss, Issue{Path: "/", Code: CodeInvalidType, Message: fmt.Sprintf("top-level schema must be a record, got %s", s.KindName()), Offset: -1})
		return iss
	}
	validateNode(s, "", &iss)
	if len(iss) == 0 {
		return nil
	}
	return iss
}

func validateNode(s *Schema, path string, iss *Issues) {
	add := func(p, code, msg string) {
		if p == "" {
			p = "/"
		}
		*iss = append(*iss, Issue{Path: p, Code: code, Message: msg, Offset: -1})
	}
	if s == nil {
		add(path, CodeRequired, "schema node is required")
		return
	}
	switch s.Type {
	case TypeRecord:
		if len(s.Fields) == 0 {
			add(path, CodeTooShort, "record must declare at least one field")
		}
		seen := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			fp := joinPointer(path, f.Name)
			if _, dup := seen[f.Name]; dup {
				add(fp, CodeDuplicateKey, fmt.Sprintf("field '%s' is declared more than once", f.Name))
			}
			seen[f.Name] = struct{}{}
			validateNode(f.Schema, fp, iss)
		}
	case TypeArray:
		validateNode(s.Items, path+"/items", iss)
	case TypeMap:
		if s.Keys == nil || s.Keys.Type != TypeString {
			add(path+"/keys", CodeInvalidType, "map keys must be non-nullable strings")
		}
		validateNode(s.Values, path+"/values", iss)
	case TypeNullable:
		validateNode(s.Inner, path, iss)
	case TypeUnion:
		for i, b := range s.Branches {
			validateNode(b, path+"/"+strconv.Itoa(i), iss)
		}
	case TypeBytes:
		if s.Logical == LogicalDecimal {
			if s.Precision < 1 {
				add(path, CodeTooShort, fmt.Sprintf("decimal precision must be at least 1, got %d", s.Precision))
			}
			if s.Scale < 0 || s.Scale > s.Precision {
				add(path, CodeTooBig, fmt.Sprintf("decimal scale must be between 0 and precision %d, got %d", s.Precision, s.Scale))
			}
		}
	}
}

// CheckConvertible reports every node that the Transformer cannot populate:
// plain bytes, general unions and null. Nullable wrappers are looked through.
func CheckConvertible(s *Schema) error {
	var iss Issues
	checkConvertible(s, "", &iss)
	if len(iss) == 0 {
		return nil
	}
	return iss
}

func checkConvertible(s *Schema, path string, iss *Issues) {
	if s == nil {
		return
	}
	s = s.NonNullable()
	if s == nil {
		return
	}
	switch s.Type {
	case TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeString:
	case TypeRecord:
		for _, f := range s.Fields {
			checkConvertible(f.Schema, joinPointer(path, f.Name), iss)
		}
	case TypeArray:
		checkConvertible(s.Items, path+"/items", iss)
	case TypeMap:
		checkConvertible(s.Values, path+"/values", iss)
	default:
		if s.IsDecimal() {
			return
		}
		p := path
		if p == "" {
			p = "/"
		}
		*iss = append(*iss, Issue{Path: p, Code: CodeUnsupportedType, Message: fmt.Sprintf("type '%s' is not supported", s.KindName()), Offset: -1})
	}
}
