package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Bootstrap creates roster members that do not exist yet. Existing employees
// are never modified. It returns the number of employees created.
func Bootstrap(ctx context.Context, repo Repository, members []Member) (int, error) {
	created := 0

	for _, m := range members {
		if err := validateMember(m); err != nil {
			return created, err
		}

		_, err := repo.FindByID(ctx, m.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrEmployeeNotFound) {
			return created, fmt.Errorf("failed to look up employee %s: %w", m.ID, err)
		}

		hash, err := hashPassword(m.Password)
		if err != nil {
			return created, fmt.Errorf("failed to hash password for %s: %w", m.ID, err)
		}

		ok, err := repo.CreateIfAbsent(ctx, &Employee{
			ID:           m.ID,
			DisplayName:  m.DisplayName,
			Department:   m.Department,
			Role:         m.Role,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return created, fmt.Errorf("failed to create employee %s: %w", m.ID, err)
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func validateMember(m Member) error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrInvalidID
	}
	if !m.Role.IsValid() {
		return fmt.Errorf("%w: %q for %s", ErrInvalidRole, m.Role, m.ID)
	}
	if m.Password == "" {
		return fmt.Errorf("%w: %s", ErrEmptyPassword, m.ID)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if isBcryptHash(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	if _, err := bcrypt.Cost([]byte(s)); err != nil {
		return false
	}
	return true
}

// Authenticator verifies login credentials against the roster
type Authenticator struct {
	repo   Repository
	logger *zap.Logger
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(repo Repository, logger *zap.Logger) *Authenticator {
	return &Authenticator{repo: repo, logger: logger}
}

// Authenticate returns the employee for valid credentials. An unknown id or a
// wrong password yields (nil, nil); errors are storage failures only.
func (a *Authenticator) Authenticate(ctx context.Context, id, password string) (*Employee, error) {
	e, err := a.repo.FindByID(ctx, id)
	if errors.Is(err, ErrEmployeeNotFound) {
		a.logger.Info("Login failed", zap.String("employee_id", id), zap.String("reason", "unknown id"))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)); err != nil {
		a.logger.Info("Login failed", zap.String("employee_id", id), zap.String("reason", "password mismatch"))
		return nil, nil
	}

	return e, nil
}
