// Package httpserver wraps net/http.Server with address validation, a
// readiness signal and graceful shutdown.
package httpserver
