package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of the server.
	shutdownTimeout = 30 * time.Second
)
