package client

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/reoring/oscconnect/config"
)

// FromConfig builds a client from validated connector settings.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	var auth Authenticator
	switch cfg.AuthenticationType {
	case config.AuthBasic:
		auth = BasicAuth(cfg.Username, cfg.Password)
	case config.AuthSession:
		auth = SessionAuth(cfg.SessionID)
	case config.AuthOAuth:
		auth = BearerAuth(cfg.AccessToken)
	default:
		return nil, fmt.Errorf("client: unsupported authentication type %q", cfg.AuthenticationType)
	}
	return New(Options{
		ServerURL:          cfg.ServerURL,
		Auth:               auth,
		ApplicationContext: cfg.ReferenceName,
		PageSize:           cfg.PageSize,
		Timeout:            cfg.Timeout,
		Logger:             logger,
		Retries:            3,
	})
}

// Documents opens the iterator the configuration asks for: a ROQL query or
// a full object collection pull.
func (c *Client) Documents(cfg *config.Config) (*Iterator, error) {
	if cfg.QueryType == config.QueryROQL {
		return c.QueryResults(cfg.Query), nil
	}
	resource, ok := cfg.ResourceName()
	if !ok {
		return nil, fmt.Errorf("client: unknown Service Cloud object %q", cfg.ServiceCloudObject)
	}
	q := CollectionQuery{
		OrderBy:    cfg.SortBy,
		Descending: cfg.SortDirection == config.SortDescending,
	}
	var err error
	if cfg.StartDate != "" {
		if q.UpdatedFrom, err = time.Parse(time.RFC3339, cfg.StartDate); err != nil {
			return nil, fmt.Errorf("client: start date: %w", err)
		}
	}
	if cfg.EndDate != "" {
		if q.UpdatedTo, err = time.Parse(time.RFC3339, cfg.EndDate); err != nil {
			return nil, fmt.Errorf("client: end date: %w", err)
		}
	}
	return c.Collection(resource, q), nil
}
