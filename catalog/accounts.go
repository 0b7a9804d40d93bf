package catalog

import osc "github.com/reoring/oscconnect"

func accountsSchema() *osc.Schema {
	fields := append(objectHeader(),
		optionalField("accountHierarchy", linkedObject("account-hierarchy")),
		osc.NewField("attributes", accountAttributes()),
		optionalField("country", linkedObject("country")),
		optionalField("displayName", osc.String()),
		optionalField("displayOrder", osc.Int()),
		optionalField("emailNotification", idLookupName("email-notification")),
		optionalField("emails", osc.RecordOf("account-emails-record",
			optionalField("address", osc.String()),
			optionalField("addressType", idLookupName("account-address-type-record")),
			optionalField("certificate", osc.String()),
			optionalField("invalid", osc.Boolean()),
			linksField("account-emails"),
		)),
		optionalField("login", osc.String()),
		optionalField("manager", idLookupName("manager")),
		optionalField("name", accountName("name")),
		optionalField("nameFurigana", accountName("name-furigana")),
		optionalField("notificationPending", osc.Boolean()),
		optionalField("passwordExpirationTime", osc.String()),
		optionalField("phones", osc.RecordOf("account-phone-record",
			optionalField("number", osc.String()),
			optionalField("phoneType", idLookupName("account-phone-type-record")),
			optionalField("rawNumber", osc.String()),
			linksField("account-phone"),
		)),
		optionalField("profile", idLookupName("profile")),
		optionalField("salesSettings", osc.RecordOf("account-sales-settings-record",
			optionalField("defaultCurrency", idLookupName("default-currency")),
			optionalField("territory", idLookupName("territory")),
		)),
		optionalField("serviceSettings", osc.RecordOf("account-service-settings-record",
			optionalField("screenPopPort", osc.Int()),
		)),
		optionalField("signature", osc.String()),
		optionalField("staffGroup", idLookupName("staff-group")),
	)
	return osc.RecordOf("account-record", fields...)
}

func accountAttributes() *osc.Schema {
	flags := []string{
		"accountLocked",
		"canModifyEmailSignature",
		"forcePasswordChange",
		"infrequentUser",
		"passwordNeverExpires",
		"permanentlyDisabled",
		"staffAssignmentDisabled",
		"viewsReportsDisabled",
		"virtualAccount",
	}
	fields := make([]osc.Field, len(flags))
	for i, f := range flags {
		fields[i] = optionalField(f, osc.Boolean())
	}
	return osc.RecordOf("account-attributes-record", fields...)
}

func accountName(prefix string) *osc.Schema {
	return osc.RecordOf(prefix+"-account-name-record",
		optionalField("first", osc.String()),
		optionalField("last", osc.String()),
	)
}
