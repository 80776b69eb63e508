// Package config handles configuration loading, parsing, and validation.
// All settings come from environment variables with sensible defaults; the
// variable names are inherited unchanged from the service this one
// replaces, so existing deployments keep working. It provides type-safe
// access to application settings needed by different components while
// keeping configuration details separate from business logic.
package config
