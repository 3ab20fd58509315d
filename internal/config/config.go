package config

type Config interface {
	EnvConfig
	CorsConfig
	AuthConfig
	MirrorConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDatabaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Auth
	Mirror
}

func New() Config {
	return mainConfig{}
}
