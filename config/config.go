// Package config holds the connector settings, loads them from YAML and
// validates them with a failure collector.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Property names as they appear in YAML and in validation failures.
const (
	PropReferenceName      = "referenceName"
	PropAuthenticationType = "authenticationType"
	PropServerURL          = "serverUrl"
	PropUsername           = "username"
	PropPassword           = "password"
	PropSessionID          = "sessionId"
	PropAccessToken        = "accessToken"
	PropQueryType          = "queryType"
	PropServiceCloudObject = "serviceCloudObject"
	PropQuery              = "query"
	PropSortBy             = "sortBy"
	PropSortDirection      = "sortDirection"
	PropStartDate          = "startDate"
	PropEndDate            = "endDate"
	PropSchema             = "schema"
	PropPageSize           = "pageSize"
	PropTimeout            = "timeout"
)

const (
	DefaultPageSize = 1000
	MaxPageSize     = 20000
	DefaultTimeout  = 30 * time.Second
)

// AuthenticationType selects how requests are authorized.
type AuthenticationType string

const (
	AuthBasic   AuthenticationType = "basic"
	AuthSession AuthenticationType = "session"
	AuthOAuth   AuthenticationType = "oauth"
)

func (a AuthenticationType) valid() bool {
	return a == AuthBasic || a == AuthSession || a == AuthOAuth
}

// QueryType selects between pulling a whole collection and running ROQL.
type QueryType string

const (
	QueryFullObject QueryType = "Full Object"
	QueryROQL       QueryType = "ROQL"
)

// SortDirection orders a full object pull.
type SortDirection string

const (
	SortAscending  SortDirection = "Ascending"
	SortDescending SortDirection = "Descending"
)

// Config is the connector configuration.
type Config struct {
	ReferenceName      string             `yaml:"referenceName"`
	AuthenticationType AuthenticationType `yaml:"authenticationType"`
	ServerURL          string             `yaml:"serverUrl"`
	Username           string             `yaml:"username"`
	Password           string             `yaml:"password"`
	SessionID          string             `yaml:"sessionId"`
	AccessToken        string             `yaml:"accessToken"`
	QueryType          QueryType          `yaml:"queryType"`
	ServiceCloudObject string             `yaml:"serviceCloudObject"`
	Query              string             `yaml:"query"`
	SortBy             string             `yaml:"sortBy"`
	SortDirection      SortDirection      `yaml:"sortDirection"`
	StartDate          string             `yaml:"startDate"`
	EndDate            string             `yaml:"endDate"`
	Schema             SchemaSource       `yaml:"schema"`
	PageSize           int                `yaml:"pageSize"`
	Timeout            time.Duration      `yaml:"timeout"`
}

// Load reads a YAML config file. ${VAR} references are expanded from the
// environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SortBy != "" && c.SortDirection == "" {
		c.SortDirection = SortAscending
	}
}
