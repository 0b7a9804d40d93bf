package catalog

import osc "github.com/reoring/oscconnect"

func analyticsReportsSchema() *osc.Schema {
	fields := append(objectHeader(),
		optionalField("columns", osc.RecordOf("analytics-reports-columns-record",
			optionalField("dataType", idLookupName("reports-columns-data-type")),
			optionalField("description", osc.String()),
			optionalField("heading", osc.String()),
			linksField("report-columns"),
		)),
		optionalField("filters", osc.RecordOf("analytics-reports-filters-record",
			optionalField("attributes", osc.RecordOf("analytics-reports-filters-attributes-record",
				optionalField("editable", osc.Boolean()),
				optionalField("required", osc.Boolean()),
			)),
			optionalField("dataType", idLookupName("reports-filters-data-type")),
			optionalField("name", osc.String()),
			optionalField("operator", idLookupName("reports-filters-operator")),
			optionalField("prompt", osc.String()),
			optionalField("values", osc.ArrayOf(osc.String())),
			linksField("report-filters"),
		)),
		optionalField("name", osc.String()),
		optionalField("names", osc.RecordOf("analytics-reports-names-record",
			optionalField("labelText", osc.String()),
			optionalField("language", idLookupName("reports-names-language")),
			linksField("analytics-reports-names"),
		)),
	)
	return osc.RecordOf("analytics-report-record", fields...)
}
