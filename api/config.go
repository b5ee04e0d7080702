// Package api provides the dashboard HTTP API over the people and reports
// registry.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5000")
	ListenAddr string
}
