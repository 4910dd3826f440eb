package config

type Config interface {
	EnvConfig
	ProviderConfig
	SessionConfig
	GuardConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetRedisAddr() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Provider
	Session
	Guard
}

func New() Config {
	return mainConfig{}
}
