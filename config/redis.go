package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis configuration for per-client session storage.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// KeyPrefix is prepended to every client namespace.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"fs:client:"`

	// SessionTTL is how long an idle client's storage survives. Every write refreshes it.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

// Sanitize applies guardrails to Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	if r.DB < 0 {
		r.DB = 0
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = "fs:client:"
	}
	if r.SessionTTL <= 0 {
		r.SessionTTL = 720 * time.Hour
	}
}
