package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Schema string `json:"$schema,omitempty"`
	Title  string `json:"title,omitempty"`

	// Core. Type is a string or, for nullable nodes, a []string.
	Type    any    `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Pattern string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Numeric bounds for int/long.
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`

	// Extensions carrying the decimal logical type.
	XPrecision *int `json:"x-precision,omitempty"`
	XScale     *int `json:"x-scale,omitempty"`
}
