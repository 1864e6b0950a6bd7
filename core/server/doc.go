// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application itself; this package only
// defines the listen port and the API key protecting every route.
package server
