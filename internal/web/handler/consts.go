// Package handler holds shared pieces for the web handler services.
package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// APIPrefix is the path prefix all API routes are registered under.
	APIPrefix = "/v1"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
