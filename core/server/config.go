package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// CacheSeconds is how long machine listings are reused between requests.
	CacheSeconds int `mapstructure:"cache_seconds" default:"30"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// CacheTTL returns the listing cache lifetime. Zero disables caching.
func (c Config) CacheTTL() time.Duration {
	if c.CacheSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheSeconds) * time.Second
}
