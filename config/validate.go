package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	osc "github.com/reoring/oscconnect"
	"github.com/reoring/oscconnect/catalog"
)

var referenceNamePattern = regexp.MustCompile(`^[$.a-zA-Z0-9_-]+$`)

const supportedTypeNames = "boolean, int, long, float, double, string, decimal"

// Validate records every configuration problem in c.
func (cfg *Config) Validate(c *Collector) {
	cfg.validateReferenceName(c)
	cfg.validateConnection(c)
	cfg.validateQuery(c)
	cfg.validateDates(c)
	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		c.Add(Failure{
			Message:    fmt.Sprintf("Page size '%d' is out of range", cfg.PageSize),
			Correction: fmt.Sprintf("Use a page size between 1 and %d.", MaxPageSize),
			Property:   PropPageSize,
		})
	}
	if cfg.Timeout < 0 {
		c.Add(Failure{Message: "Timeout must not be negative", Property: PropTimeout})
	}
	if !cfg.Schema.IsZero() {
		s, err := cfg.Schema.Parse()
		if err != nil {
			c.Add(Failure{Message: fmt.Sprintf("Invalid schema: %v", err), Property: PropSchema})
			return
		}
		ValidateOutputSchema(s, c)
	}
}

func (cfg *Config) validateReferenceName(c *Collector) {
	switch {
	case cfg.ReferenceName == "":
		c.Add(Failure{Message: "Reference name must be specified", Property: PropReferenceName})
	case !referenceNamePattern.MatchString(cfg.ReferenceName):
		c.Add(Failure{
			Message:    fmt.Sprintf("Invalid reference name '%s'.", cfg.ReferenceName),
			Correction: "Supported characters are: letters, numbers, and '_', '-', '.', or '$'.",
			Property:   PropReferenceName,
		})
	}
}

func (cfg *Config) validateConnection(c *Collector) {
	if cfg.ServerURL == "" {
		c.Add(Failure{Message: "Server URL must be specified", Property: PropServerURL})
	} else if u, err := url.Parse(cfg.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.Add(Failure{
			Message:    fmt.Sprintf("Invalid server URL '%s'", cfg.ServerURL),
			Correction: "Use an absolute http or https URL.",
			Property:   PropServerURL,
		})
	}

	if !cfg.AuthenticationType.valid() {
		c.Add(Failure{
			Message:    fmt.Sprintf("Invalid authentication type '%s'", cfg.AuthenticationType),
			Correction: "Use one of: basic, session, oauth.",
			Property:   PropAuthenticationType,
		})
		return
	}
	switch cfg.AuthenticationType {
	case AuthBasic:
		if cfg.Username == "" && cfg.Password != "" {
			c.Add(Failure{Message: "Username must be specified", Property: PropUsername})
		}
		if cfg.Username != "" && cfg.Password == "" {
			c.Add(Failure{Message: "Password must be specified", Property: PropPassword})
		}
	case AuthSession:
		if cfg.SessionID == "" {
			c.Add(Failure{Message: "Session ID must be specified for session authentication", Property: PropSessionID})
		}
	case AuthOAuth:
		if cfg.AccessToken == "" {
			c.Add(Failure{Message: "Access token must be specified for OAuth authentication", Property: PropAccessToken})
		}
	}
}

func (cfg *Config) validateQuery(c *Collector) {
	switch cfg.QueryType {
	case QueryFullObject:
		if cfg.ServiceCloudObject == "" {
			c.Add(Failure{Message: "Service Cloud object must be specified", Property: PropServiceCloudObject})
		} else if _, ok := cfg.object(); !ok {
			c.Add(Failure{
				Message:    fmt.Sprintf("Unknown Service Cloud object '%s'", cfg.ServiceCloudObject),
				Correction: "Use one of: " + strings.Join(catalog.DisplayNames(), ", ") + ".",
				Property:   PropServiceCloudObject,
			})
		}
		switch cfg.SortDirection {
		case "", SortAscending, SortDescending:
		default:
			c.Add(Failure{
				Message:    fmt.Sprintf("Invalid sort direction '%s'", cfg.SortDirection),
				Correction: "Use Ascending or Descending.",
				Property:   PropSortDirection,
			})
		}
	case QueryROQL:
		if strings.TrimSpace(cfg.Query) == "" {
			c.Add(Failure{Message: "ROQL query must be specified", Property: PropQuery})
		}
	default:
		c.Add(Failure{
			Message:    fmt.Sprintf("Invalid query type '%s'", cfg.QueryType),
			Correction: "Use 'Full Object' or 'ROQL'.",
			Property:   PropQueryType,
		})
	}
}

func (cfg *Config) validateDates(c *Collector) {
	start, startOK := parseDate(cfg.StartDate, PropStartDate, c)
	end, endOK := parseDate(cfg.EndDate, PropEndDate, c)
	if startOK && endOK && !start.Before(end) {
		c.Add(Failure{
			Message:  fmt.Sprintf("Start date '%s' must be before end date '%s'", cfg.StartDate, cfg.EndDate),
			Property: PropEndDate,
		})
	}
}

func parseDate(v, prop string, c *Collector) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		c.Add(Failure{
			Message:    fmt.Sprintf("Invalid date '%s'", v),
			Correction: "Use RFC 3339 format, for example 2019-06-01T00:00:00Z.",
			Property:   prop,
		})
		return time.Time{}, false
	}
	return t, true
}

// ValidateOutputSchema checks that s is a well-formed record schema whose
// leaves are all types the transformer can populate.
func ValidateOutputSchema(s *osc.Schema, c *Collector) {
	if s == nil {
		c.Add(Failure{Message: "Schema must be specified", Property: PropSchema})
		return
	}
	if s.Type == osc.TypeRecord && len(s.Fields) == 0 {
		c.Add(Failure{Message: "Schema must contain at least one field", Property: PropSchema})
		return
	}
	if iss, ok := osc.AsIssues(osc.ValidateSchema(s)); ok {
		for _, it := range iss {
			f := Failure{Message: it.Message, Field: fieldName(it.Path)}
			if it.Code == osc.CodeInvalidType && strings.HasSuffix(it.Path, "/keys") {
				f.Message = "Map keys must be a non-nullable string"
				f.Correction = fmt.Sprintf("Change field '%s' to use a non-nullable string as the map key", f.Field)
			}
			if f.Field == "" {
				f.Property = PropSchema
			}
			c.Add(f)
		}
	}
	if iss, ok := osc.AsIssues(osc.CheckConvertible(s)); ok {
		for _, it := range iss {
			name := fieldName(it.Path)
			c.Add(Failure{
				Message:    fmt.Sprintf("Field '%s' is of unsupported type. Supported types are: %s", name, supportedTypeNames),
				Correction: fmt.Sprintf("Change field '%s' to be a supported type", name),
				Field:      name,
			})
		}
	}
}

// fieldName turns a schema pointer such as /emails/items/address into the
// dotted field name emails.address.
func fieldName(pointer string) string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(pointer, "/"), "/") {
		switch p {
		case "", "items", "values", "keys":
			continue
		}
		parts = append(parts, strings.NewReplacer("~1", "/", "~0", "~").Replace(p))
	}
	return strings.Join(parts, ".")
}

func (cfg *Config) object() (catalog.Object, bool) {
	if o, ok := catalog.FromDisplayName(cfg.ServiceCloudObject); ok {
		return o, true
	}
	return catalog.FromResourceName(cfg.ServiceCloudObject)
}

// ErrNoSchema is returned by ResolveSchema for ROQL queries without a custom schema.
var ErrNoSchema = errors.New("config: ROQL queries require a custom schema")

// ResolveSchema returns the custom schema when one is configured, otherwise
// the catalog schema of the selected object.
func (cfg *Config) ResolveSchema() (*osc.Schema, error) {
	if !cfg.Schema.IsZero() {
		return cfg.Schema.Parse()
	}
	if cfg.QueryType == QueryROQL {
		return nil, ErrNoSchema
	}
	o, ok := cfg.object()
	if !ok {
		return nil, fmt.Errorf("config: unknown Service Cloud object %q", cfg.ServiceCloudObject)
	}
	return o.Schema(), nil
}

// ResourceName returns the REST collection of the selected object.
func (cfg *Config) ResourceName() (string, bool) {
	o, ok := cfg.object()
	if !ok {
		return "", false
	}
	return o.ResourceName(), true
}
