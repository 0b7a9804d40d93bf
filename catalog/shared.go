package catalog

import osc "github.com/reoring/oscconnect"

// Field names shared by every object.
const (
	FieldID          = "id"
	FieldCreatedTime = "createdTime"
	FieldUpdatedTime = "updatedTime"
	FieldLookupName  = "lookupName"
	FieldLinks       = "links"
)

func optional(s *osc.Schema) *osc.Schema { return osc.NullableOf(s) }

func optionalField(name string, s *osc.Schema) osc.Field {
	return osc.NewField(name, optional(s))
}

// objectHeader is the id/createdTime/updatedTime/lookupName prefix.
func objectHeader() []osc.Field {
	return []osc.Field{
		optionalField(FieldID, osc.Int()),
		optionalField(FieldCreatedTime, osc.String()),
		optionalField(FieldUpdatedTime, osc.String()),
		optionalField(FieldLookupName, osc.String()),
	}
}

// link is a HATEOAS link entry.
func link(prefix string) *osc.Schema {
	return osc.RecordOf(prefix+"-link-record",
		optionalField("rel", osc.String()),
		optionalField("href", osc.String()),
		optionalField("mediaType", osc.String()),
	)
}

func linksField(prefix string) osc.Field {
	return osc.NewField(FieldLinks, osc.ArrayOf(link(prefix)))
}

// linkedObject is a sub-resource that is only exposed through links.
func linkedObject(prefix string) *osc.Schema {
	return osc.RecordOf(prefix+"-linked-object-record", linksField(prefix))
}

// idLookupName is a reference that can be set by id or by name.
func idLookupName(prefix string) *osc.Schema {
	return osc.RecordOf(prefix+"-id-lookup-name-record",
		optionalField(FieldID, osc.Int()),
		optionalField(FieldLookupName, osc.String()),
	)
}
