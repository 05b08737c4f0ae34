package config

type Config interface {
	EnvConfig
	OidcConfig
	SessionConfig
}

type mainConfig struct {
	EnvVars
	Oidc
	SessionVars
}

func New() Config {
	return mainConfig{}
}
