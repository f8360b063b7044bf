package config

import (
	"fmt"
	"strings"
)

// ValidateForEnvironment checks that the loaded configuration is safe for the
// environment it declares. Production requires authentication and a durable
// store; other environments only get warnings.
func (c *Config) ValidateForEnvironment() error {
	if c.Environment != EnvProduction {
		return nil
	}

	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables for production: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateWithWarnings checks the configuration and returns warnings for
// non-critical issues (like example values left in place)
func (c *Config) ValidateWithWarnings() ([]string, error) {
	if err := c.ValidateForEnvironment(); err != nil {
		return nil, err
	}

	var warnings []string

	if c.APIKey == "generate_with_openssl_rand_hex_32" {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if c.APIKey == "" {
		warnings = append(warnings, "API_KEY is not set - the HTTP API will accept unauthenticated requests")
	}
	if c.DatabaseURL == "" {
		warnings = append(warnings, "DATABASE_URL is not set - state will be lost on restart")
	}

	return warnings, nil
}
