// Package oscconnect converts JSON documents returned by the Oracle Service
// Cloud REST API into structured records that conform to a declared schema.
//
// The package provides:
//
// - A tagged-variant Schema model with an Avro-style JSON form (ParseSchema / MarshalJSON)
// - Immutable Records built through RecordBuilder, with a fixed-point Decimal logical type
// - The Transformer, which maps one untyped JSON document onto one Record
// - Document decoding over pluggable JSON drivers with duplicate-key/depth/size enforcement
// - A stable error model: UnexpectedFormatError for conversion, Issues for schemas and decoding
//
// Fetching, paging and authentication live in the client package; the
// transformer never performs I/O.
//
// Typical usage:
//
//	t, err := oscconnect.NewTransformer(schema)
//	rec, err := t.TransformBytes(data)
//	v, _ := rec.Get("lookupName")
package oscconnect
