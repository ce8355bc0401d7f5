// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the API key protecting every
// route except /health and /swagger, and the graceful shutdown bound.
package server
