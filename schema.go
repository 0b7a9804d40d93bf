package oscconnect

// Type is the tag of a schema node.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeBytes
	TypeArray
	TypeMap
	TypeRecord
	TypeUnion
	TypeNullable
)

var typeNames = [...]string{
	TypeNull:     "null",
	TypeBoolean:  "boolean",
	TypeInt:      "int",
	TypeLong:     "long",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeString:   "string",
	TypeBytes:    "bytes",
	TypeArray:    "array",
	TypeMap:      "map",
	TypeRecord:   "record",
	TypeUnion:    "union",
	TypeNullable: "nullable",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// LogicalType refines the physical type of a node.
type LogicalType int

const (
	LogicalNone LogicalType = iota
	// LogicalDecimal is a fixed-point number stored as the big-endian two's
	// complement bytes of its unscaled value.
	LogicalDecimal
)

// Schema is one node of a record schema. Which fields are meaningful depends
// on Type:
//
//	array    Items
//	map      Keys, Values
//	record   Name, Fields
//	union    Branches
//	nullable Inner
//	bytes    Logical, Precision, Scale (decimal only)
type Schema struct {
	Type Type

	Name   string
	Fields []Field

	Items  *Schema
	Keys   *Schema
	Values *Schema

	Branches []*Schema
	Inner    *Schema

	Logical   LogicalType
	Precision int
	Scale     int
}

// Field is a named member of a record schema.
type Field struct {
	Name   string
	Schema *Schema
}

func primitive(t Type) *Schema { return &Schema{Type: t} }

func Null() *Schema    { return primitive(TypeNull) }
func Boolean() *Schema { return primitive(TypeBoolean) }
func Int() *Schema     { return primitive(TypeInt) }
func Long() *Schema    { return primitive(TypeLong) }
func Float() *Schema   { return primitive(TypeFloat) }
func Double() *Schema  { return primitive(TypeDouble) }
func String() *Schema  { return primitive(TypeString) }
func Bytes() *Schema   { return primitive(TypeBytes) }

// Decimal returns a decimal(precision, scale) node.
func Decimal(precision, scale int) *Schema {
	return &Schema{Type: TypeBytes, Logical: LogicalDecimal, Precision: precision, Scale: scale}
}

// ArrayOf returns an array node with the given element schema.
func ArrayOf(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

// MapOf returns a map node with string keys.
func MapOf(values *Schema) *Schema {
	return &Schema{Type: TypeMap, Keys: String(), Values: values}
}

// RecordOf returns a record node.
func RecordOf(name string, fields ...Field) *Schema {
	return &Schema{Type: TypeRecord, Name: name, Fields: fields}
}

// NewField is shorthand for Field{Name: name, Schema: s}.
func NewField(name string, s *Schema) Field { return Field{Name: name, Schema: s} }

// UnionOf returns a general union node. Use NullableOf for T|null.
func UnionOf(branches ...*Schema) *Schema { return &Schema{Type: TypeUnion, Branches: branches} }

// NullableOf wraps s so that null is also accepted. Already nullable nodes are
// returned as is.
func NullableOf(s *Schema) *Schema {
	if s != nil && s.Type == TypeNullable {
		return s
	}
	return &Schema{Type: TypeNullable, Inner: s}
}

// IsNullable reports whether s is a nullable wrapper.
func (s *Schema) IsNullable() bool { return s != nil && s.Type == TypeNullable }

// NonNullable removes one nullable wrapper.
func (s *Schema) NonNullable() *Schema {
	if s.IsNullable() {
		return s.Inner
	}
	return s
}

// IsDecimal reports whether s is a decimal node.
func (s *Schema) IsDecimal() bool {
	return s != nil && s.Type == TypeBytes && s.Logical == LogicalDecimal
}

// Field returns the record field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// KindName is the type name used in diagnostics; decimals report "decimal".
func (s *Schema) KindName() string {
	if s.IsDecimal() {
		return "decimal"
	}
	return s.Type.String()
}
