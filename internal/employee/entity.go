package employee

import "time"

// Role grants access to admin-only operations
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Employee is a roster member. ID is the unique login name.
type Employee struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Department   string    `json:"department"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the employee has the admin role
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// Member is a roster entry as configured. Password may be plain text or a bcrypt hash.
type Member struct {
	ID          string
	DisplayName string
	Password    string
	Department  string
	Role        Role
}
