package config

import "time"

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type StoreConfig interface {
	GetCredentialStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetCredentialMaxAge() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetCredentialStore is "memory" or "redis"
func (Store) GetCredentialStore() string {
	return GetEnv("CREDENTIAL_STORE", StoreMemory)
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

// GetCredentialMaxAge matches the backend's one day token lifetime
func (Store) GetCredentialMaxAge() time.Duration {
	return GetDurationEnv("CREDENTIAL_MAX_AGE", 24*time.Hour)
}
