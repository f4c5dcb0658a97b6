package server

import "time"

// HTTP server constants
const (
	// HTTP timeouts
	HTTPReadTimeout  = 15 * time.Second
	HTTPWriteTimeout = 15 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	// Shutdown timeout
	HTTPShutdownTimeout = 30 * time.Second

	// Request limits
	MaxRequestBodyBytes = 1 << 20

	// RequestIDHeader carries the per-request ULID
	RequestIDHeader = "X-Request-ID"
)
