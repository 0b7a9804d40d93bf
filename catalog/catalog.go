// Package catalog holds the record schemas of the Oracle Service Cloud
// objects the connector can pull without a custom schema.
package catalog

import (
	"sort"

	osc "github.com/reoring/oscconnect"
)

// Object is one Oracle Service Cloud REST collection.
type Object struct {
	displayName  string
	resourceName string
	schema       func() *osc.Schema
}

var (
	Accounts         = Object{displayName: "Accounts", resourceName: "accounts", schema: accountsSchema}
	AnalyticsReports = Object{displayName: "Analytics Reports", resourceName: "analyticsReports", schema: analyticsReportsSchema}
)

var objects = []Object{Accounts, AnalyticsReports}

// DisplayName is the name shown to users and accepted in configuration.
func (o Object) DisplayName() string { return o.displayName }

// ResourceName is the REST collection path segment.
func (o Object) ResourceName() string { return o.resourceName }

// Schema returns a fresh copy of the object's record schema.
func (o Object) Schema() *osc.Schema { return o.schema() }

func (o Object) String() string { return o.displayName }

// All returns the known objects sorted by display name.
func All() []Object {
	out := append([]Object(nil), objects...)
	sort.Slice(out, func(i, j int) bool { return out[i].displayName < out[j].displayName })
	return out
}

// FromDisplayName looks up an object by its display name.
func FromDisplayName(name string) (Object, bool) {
	for _, o := range objects {
		if o.displayName == name {
			return o, true
		}
	}
	return Object{}, false
}

// FromResourceName looks up an object by its REST resource name.
func FromResourceName(name string) (Object, bool) {
	for _, o := range objects {
		if o.resourceName == name {
			return o, true
		}
	}
	return Object{}, false
}

// DisplayNames lists the accepted display names.
func DisplayNames() []string {
	all := All()
	names := make([]string, len(all))
	for i, o := range all {
		names[i] = o.displayName
	}
	return names
}
