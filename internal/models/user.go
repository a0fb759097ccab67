package models

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// Role represents the available roles for the RBAC system.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleSupervisor Role = "Supervisor"
	RoleHR         Role = "HR"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleHR:
		return true
	default:
		return false
	}
}

// User represents an application user. Users are never hard-deleted,
// only deactivated.
type User struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	PasswordHash    string `json:"-"`
	Role            Role   `json:"role"`
	Active          bool   `json:"active"`
	AssignedSection string `json:"assigned_section,omitempty"`
	AssignedShift   string `json:"assigned_shift,omitempty"`
}

// UserFromRow decodes a normalized store row.
func UserFromRow(row store.Row) User {
	return User{
		ID:              row.Int("id"),
		Name:            row.String("name"),
		Username:        row.String("username"),
		PasswordHash:    row.String("password_hash"),
		Role:            Role(row.String("role")),
		Active:          row.Bool("active"),
		AssignedSection: row.String("assigned_section"),
		AssignedShift:   row.String("assigned_shift"),
	}
}

// Row encodes the user for the store layer.
func (u User) Row() store.Row {
	row := store.Row{
		"name":             u.Name,
		"username":         u.Username,
		"password_hash":    u.PasswordHash,
		"role":             string(u.Role),
		"active":           u.Active,
		"assigned_section": u.AssignedSection,
		"assigned_shift":   u.AssignedShift,
	}
	if u.ID > 0 {
		row["id"] = u.ID
	}
	return row
}

// JWTClaims are the access-token claims carried per request.
type JWTClaims struct {
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Session is the explicit per-interaction context handed to services.
// It replaces any global logged-in-user state.
type Session struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SessionFromClaims builds the session context out of validated claims.
func SessionFromClaims(claims *JWTClaims) Session {
	return Session{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
}
