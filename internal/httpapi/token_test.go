package httpapi

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/staff-attendance/internal/employee"
)

func TestTokenService_Issue(t *testing.T) {
	svc := NewTokenService(testSecret, 2*time.Hour)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	token, expiresAt, err := svc.Issue(&employee.Employee{ID: "矢野", Role: employee.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(2*time.Hour), expiresAt)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	id, _ := parsed.Get(claimEmployeeID)
	role, _ := parsed.Get(claimRole)
	assert.Equal(t, "矢野", id)
	assert.Equal(t, "staff", role)
	assert.NotEmpty(t, parsed.JwtID())
	assert.True(t, parsed.Expiration().Equal(expiresAt))
}

func TestTokenService_UniqueJTI(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	e := &employee.Employee{ID: "古賀", Role: employee.RoleAdmin}

	a, _, err := svc.Issue(e)
	require.NoError(t, err)
	b, _, err := svc.Issue(e)
	require.NoError(t, err)

	ta, err := jwtauth.VerifyToken(svc.JWTAuth(), a)
	require.NoError(t, err)
	tb, err := jwtauth.VerifyToken(svc.JWTAuth(), b)
	require.NoError(t, err)
	assert.NotEqual(t, ta.JwtID(), tb.JwtID())
}

func TestTokenService_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenService(testSecret, time.Hour).Issue(&employee.Employee{ID: "古賀", Role: employee.RoleAdmin})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(NewTokenService("another-secret-0123456789abcdefgh", time.Hour).JWTAuth(), token)
	assert.Error(t, err)
}
