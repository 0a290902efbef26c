package identity

import (
	"context"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the backend's token payload
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwtlib.RegisteredClaims
}

// JWTIssuer signs HS256 session tokens in the backend's format
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTIssuer creates an issuer; tokens expire after ttl
func NewJWTIssuer(secret []byte, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, ttl: ttl}
}

// Issue creates a signed token for the user
func (i *JWTIssuer) Issue(userID int64, username string, role roles.Role) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),                      // Unique token ID
			IssuedAt:  jwtlib.NewNumericDate(now),            // Issued At
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.ttl)), // Expiry
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

var _ Service = (*JWTVerifier)(nil)

// JWTVerifier validates HS256 session tokens locally
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify parses and validates a raw token, returning its claims
func (v *JWTVerifier) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.ErrNoCredential
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(raw, claims,
		func(*jwtlib.Token) (any, error) { return v.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("[JWTVerifier Verify] %w: %w", errors.ErrCredentialInvalid, err)
	}
	return claims, nil
}

// CurrentUser implements Service
func (v *JWTVerifier) CurrentUser(_ context.Context, token string) (*credentials.Identity, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return nil, err
	}

	role, err := roles.Parse(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("[JWTVerifier CurrentUser] %w: %w", errors.ErrCredentialInvalid, err)
	}
	return &credentials.Identity{Username: claims.Username, Role: role}, nil
}
