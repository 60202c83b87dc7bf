package tutor

import "os"

const defaultBaseURL = "http://127.0.0.1:8000"

// Config holds tutor service client configuration.
type Config struct {
	// BaseURL is the root of the tutor service API, without a
	// trailing slash. Default: http://127.0.0.1:8000.
	BaseURL string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{BaseURL: defaultBaseURL}
}

// ConfigFromEnv builds a Config from environment variables, falling
// back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if u := os.Getenv("DSATUTOR_API_BASE"); u != "" {
		cfg.BaseURL = u
	}
	return cfg
}
