package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/username/staff-attendance/internal/employee"
)

const (
	claimEmployeeID = "employee_id"
	claimRole       = "role"
)

var errInvalidToken = errors.New("httpapi: invalid token")

// TokenService issues and verifies HS256 login tokens
type TokenService struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService signing with secret
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl:       ttl,
		now:       time.Now,
	}
}

// JWTAuth returns the verifier used by the auth middleware
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// Issue signs a token for the employee
func (s *TokenService) Issue(e *employee.Employee) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := map[string]any{
		claimEmployeeID: e.ID,
		claimRole:       string(e.Role),
		jwt.JwtIDKey:    uuid.NewString(),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, expiresAt)

	_, token, err := s.tokenAuth.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Identity is the caller extracted from a verified token
type Identity struct {
	EmployeeID string
	Role       employee.Role
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == employee.RoleAdmin
}

func identityFromContext(ctx context.Context) (Identity, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	if token == nil {
		return Identity{}, errInvalidToken
	}

	id, ok := claims[claimEmployeeID].(string)
	if !ok || id == "" {
		return Identity{}, errInvalidToken
	}
	role, _ := claims[claimRole].(string)

	return Identity{EmployeeID: id, Role: employee.Role(role)}, nil
}
