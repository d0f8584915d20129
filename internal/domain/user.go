package domain

import (
	"strings"
	"time"
)

// Built-in role names seeded by migrations.
const (
	RoleAdmin = "Admin"
	RoleAgent = "Agent"
	RoleUser  = "User"
)

// User is an account that can raise or work tickets.
type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLogin    *time.Time `db:"last_login"`
	Roles        []UserRole `db:"-"`
}

// FullName returns the display name used in comments and projections.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleNames lists the distinct role names held by the user.
func (u *User) RoleNames() []string {
	seen := make(map[string]struct{}, len(u.Roles))
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if _, ok := seen[r.RoleName]; ok {
			continue
		}
		seen[r.RoleName] = struct{}{}
		names = append(names, r.RoleName)
	}
	return names
}

// HasRole reports whether the user holds the named role in any scope.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r.RoleName, name) {
			return true
		}
	}
	return false
}

// Role is a named permission set.
type Role struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// UserRole grants a role, optionally scoped to a department or team.
type UserRole struct {
	UserID       int64  `db:"user_id"`
	RoleID       int64  `db:"role_id"`
	RoleName     string `db:"role_name"`
	DepartmentID *int64 `db:"department_id"`
	TeamID       *int64 `db:"team_id"`
}
