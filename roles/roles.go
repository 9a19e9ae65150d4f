package roles

import (
	"context"
	"strings"
)

const ADMIN = "admin"

// UserRole is keyed by the lower-cased email of the account it grants.
type UserRole struct {
	Email string
	Role  string
}

func (u UserRole) IsAdmin() bool {
	return u.Role == ADMIN
}

type Repository interface {
	// GetUserRole fails with REASON_USER_DOES_NOT_EXIST when no record exists.
	GetUserRole(ctx context.Context, email string) (UserRole, error)
	PutUserRole(ctx context.Context, role UserRole) error
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
