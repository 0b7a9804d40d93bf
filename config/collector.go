package config

import (
	"errors"
	"strings"
)

// Failure is one validation problem. Property names the config property and
// Field names the output schema field, when applicable.
type Failure struct {
	Message    string
	Correction string
	Property   string
	Field      string
}

func (f Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.Message)
	if f.Correction != "" {
		b.WriteString(" ")
		b.WriteString(f.Correction)
	}
	switch {
	case f.Property != "":
		b.WriteString(" (property '" + f.Property + "')")
	case f.Field != "":
		b.WriteString(" (field '" + f.Field + "')")
	}
	return b.String()
}

// Collector accumulates failures so that all of them can be reported at once.
type Collector struct {
	failures []Failure
}

// Add records a failure.
func (c *Collector) Add(f Failure) { c.failures = append(c.failures, f) }

// Failures returns the recorded failures in order.
func (c *Collector) Failures() []Failure { return c.failures }

// HasProperty reports whether any failure names the property.
func (c *Collector) HasProperty(prop string) bool {
	for _, f := range c.failures {
		if f.Property == prop {
			return true
		}
	}
	return false
}

// Err joins all failures, or returns nil when there are none.
func (c *Collector) Err() error {
	if len(c.failures) == 0 {
		return nil
	}
	errs := make([]error, len(c.failures))
	for i, f := range c.failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}
