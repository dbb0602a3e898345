package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.  The database stores the
// canonical lower-case form; ParseRole is the only place role strings are
// interpreted.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a stored or submitted role onto its canonical value.  The
// comparison is case-insensitive so legacy rows written as "Admin" resolve
// to RoleAdmin.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleUser):
		return RoleUser, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a row of the `users` table.
//
// Fields:
//
//	ID                  – primary key identifier, immutable.
//	FullName            – display name.
//	Email               – normalized (trimmed, lower-case) unique address.
//	PasswordHash        – bcrypt hash; never serialized.
//	Role                – admin or user.
//	ProfileImage        – stored avatar file name, if any.
//	ResetTokenHash      – SHA-256 hex of a pending password reset token.
//	ResetTokenExpiresAt – expiry of that token; set whenever the hash is set.
//	CreatedAt/UpdatedAt – row timestamps.
type User struct {
	ID                  uint64
	FullName            string
	Email               string
	PasswordHash        string
	Role                Role
	ProfileImage        *string
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
