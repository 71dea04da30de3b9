package redis

// Config holds configuration for the Redis connection.
type Config struct {
	// Enabled turns on the Redis connection. Flush and lock are no-ops without it.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Address is the host:port of the Redis server.
	Address string `mapstructure:"address" default:"localhost:6379"`
	// Password is the Redis AUTH password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis logical database.
	DB int `mapstructure:"db" default:"0"`
	// FlushPattern selects the cache keys removed by --flush.
	FlushPattern string `mapstructure:"flush_pattern" default:"url_rewrite:*"`
	// LockEnabled guards each (entity type, store) scope with a distributed lock.
	LockEnabled bool `mapstructure:"lock_enabled" default:"false"`
	// LockTTLSeconds is the lock lease; it is refreshed while the job runs.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"300"`
}
