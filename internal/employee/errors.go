package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee: not found")
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidRole      = errors.New("employee: invalid role")
	ErrEmptyPassword    = errors.New("employee: empty password")
)
