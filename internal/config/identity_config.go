package config

const (
	IdentityModeHTTP = "http"
	IdentityModeOIDC = "oidc"
)

type IdentityConfig interface {
	GetIdentityBaseURL() string
	GetIdentityMode() string
	GetOIDCIssuer() string
	GetOIDCRoleClaim() string
}

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIdentityBaseURL is the backend serving /api/login and /api/current_user
func (Identity) GetIdentityBaseURL() string {
	return GetEnv("IDENTITY_BASE_URL", "http://127.0.0.1:5000")
}

// GetIdentityMode selects how tokens are validated: "http" or "oidc"
func (Identity) GetIdentityMode() string {
	return GetEnv("IDENTITY_MODE", IdentityModeHTTP)
}

func (Identity) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Identity) GetOIDCRoleClaim() string {
	return GetEnv("OIDC_ROLE_CLAIM", "role")
}
