package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/oscconnect/catalog"
	"github.com/reoring/oscconnect/jsonschema"
)

func schemaCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	var object, format string
	fs.StringVar(&object, "object", "", "Service Cloud object display or resource name")
	fs.StringVar(&format, "format", "avro", "output format: avro or jsonschema")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if object == "" {
		return fmt.Errorf("%w: -object is required (one of: %s)", errUsage, strings.Join(catalog.DisplayNames(), ", "))
	}
	o, ok := catalog.FromDisplayName(object)
	if !ok {
		if o, ok = catalog.FromResourceName(object); !ok {
			return fmt.Errorf("unknown object %q (one of: %s)", object, strings.Join(catalog.DisplayNames(), ", "))
		}
	}

	var v any
	switch format {
	case "avro":
		v = o.Schema()
	case "jsonschema":
		v = jsonschema.FromRecord(o.Schema())
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, format)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
