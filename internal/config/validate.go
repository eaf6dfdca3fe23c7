package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Storage backends understood by credstore.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server_url must be an absolute URL (got %q)", c.ServerURL)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0 (got %s)", c.HTTPTimeout)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case BackendBolt, BackendSQLite:
		c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	default:
		return fmt.Errorf("storage.backend must be %q or %q (got %q)", BackendBolt, BackendSQLite, c.Storage.Backend)
	}

	if c.Chat.AnonymousPromptLimit < 0 {
		return fmt.Errorf("chat.anonymous_prompt_limit must be >= 0 (got %d)", c.Chat.AnonymousPromptLimit)
	}

	return nil
}
