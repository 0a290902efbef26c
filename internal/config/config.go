package config

type Config interface {
	EnvConfig
	CorsConfig
	GuardConfig
	StoreConfig
	IdentityConfig
	DevBackendConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Guard
	Store
	Identity
	DevBackend
}

func New() Config {
	return mainConfig{}
}
