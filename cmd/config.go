package cmd

import "time"

// Config carries the process configuration read from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	CacheTTL               time.Duration
	StaleLocationMaxAge    time.Duration
	NotificationBufferSize int
}

const (
	// DefaultCacheTTL bounds how long cached query responses stay warm.
	DefaultCacheTTL = 30 * time.Second

	// DefaultStaleLocationMaxAge is how old a delivery location may be
	// before the monitoring job flags it.
	DefaultStaleLocationMaxAge = 2 * time.Minute

	// DefaultNotificationBufferSize is the per-connection event buffer.
	DefaultNotificationBufferSize = 16
)
