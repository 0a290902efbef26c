package config

import "time"

// DevBackendConfig configures cmd/identityd, the local stand-in backend
type DevBackendConfig interface {
	GetDevPort() string
	GetDevJWTSecret() string
	GetDevTokenTTL() time.Duration
	GetDevUsersFile() string
}

type DevBackend struct{}

var _ DevBackendConfig = DevBackend{}

func (DevBackend) GetDevPort() string {
	return ":" + GetEnv("DEV_PORT", "5000")
}

func (DevBackend) GetDevJWTSecret() string {
	return GetEnv("DEV_JWT_SECRET", "dev-only-secret")
}

func (DevBackend) GetDevTokenTTL() time.Duration {
	return GetDurationEnv("DEV_TOKEN_TTL", 24*time.Hour)
}

// GetDevUsersFile names an optional YAML file of seed users
func (DevBackend) GetDevUsersFile() string {
	return GetEnv("DEV_USERS_FILE", "")
}
