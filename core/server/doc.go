// Package server holds configuration for the HTTP API surface.
//
// The actual Fiber application is assembled in the start command; this package
// only carries the settings (listen port, API key) so that core/config can
// compose them into the application configuration.
package server
