package config

// OidcConfig describes the OpenID Connect provider the session runtime
// authenticates against.
type OidcConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "http://localhost:8080")
}

func (Oidc) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "dashboard")
}

func (Oidc) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

// GetRedirectURL returns the redirect URI registered with the provider for
// the authorization-code callback.
func (Oidc) GetRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "http://localhost:8000/auth/callback")
}
