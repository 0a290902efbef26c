package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DefaultRoleClaim is the userinfo claim the role is read from
const DefaultRoleClaim = "role"

var _ Service = (*OIDCService)(nil)

// OIDCService validates access tokens against an OpenID provider's
// userinfo endpoint and reads the workforce role from a claim.
type OIDCService struct {
	provider   *oidc.Provider
	roleClaim  string
	httpClient *http.Client
}

// NewOIDCService discovers the provider at issuerURL. httpClient may be nil.
func NewOIDCService(ctx context.Context, issuerURL, roleClaim string, httpClient *http.Client) (*OIDCService, error) {
	if roleClaim == "" {
		roleClaim = DefaultRoleClaim
	}
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("[NewOIDCService] failed to create OIDC provider: %w", err)
	}

	return &OIDCService{
		provider:   provider,
		roleClaim:  roleClaim,
		httpClient: httpClient,
	}, nil
}

// CurrentUser calls the userinfo endpoint with token as the bearer credential
func (o *OIDCService) CurrentUser(ctx context.Context, token string) (*credentials.Identity, error) {
	if token == "" {
		return nil, errors.ErrNoCredential
	}
	if o.httpClient != nil {
		ctx = oidc.ClientContext(ctx, o.httpClient)
	}

	info, err := o.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("[OIDCService CurrentUser] %w: %w", errors.ErrServiceUnreachable, err)
		}
		return nil, fmt.Errorf("[OIDCService CurrentUser] %w: %w", errors.ErrCredentialInvalid, err)
	}

	var claims map[string]any
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[OIDCService CurrentUser] %w: %w", errors.ErrMalformedResponse, err)
	}

	role, err := roleFromClaim(claims[o.roleClaim])
	if err != nil {
		return nil, fmt.Errorf("[OIDCService CurrentUser] %w: %w", errors.ErrMalformedResponse, err)
	}

	username, _ := claims["preferred_username"].(string)
	if username == "" {
		username = info.Email
	}
	if username == "" {
		username = info.Subject
	}

	return &credentials.Identity{Username: username, Role: role}, nil
}

// roleFromClaim accepts either a single string or a list, taking the first
// recognised role in the list.
func roleFromClaim(v any) (roles.Role, error) {
	switch claim := v.(type) {
	case string:
		return roles.Parse(claim)
	case []any:
		for _, item := range claim {
			if s, ok := item.(string); ok {
				if r, err := roles.Parse(s); err == nil {
					return r, nil
				}
			}
		}
	}
	return roles.Any, fmt.Errorf("role claim %v: %w", v, errors.ErrUnknownRole)
}
