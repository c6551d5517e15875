package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role enumerates user capabilities.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStandard Role = "STANDARD"
	RoleReadOnly Role = "READ_ONLY"
)

// Valid reports whether the role is recognised.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandard, RoleReadOnly:
		return true
	}
	return false
}

// UserStatus enumerates account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// User is an application account. Deletion is logical only (status DISABLED).
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string     `bun:",pk"`
	Username     string     `bun:"username,notnull"`
	PasswordHash string     `bun:"password_hash,notnull"`
	Name         string     `bun:"name,notnull"`
	DisplayName  string     `bun:"display_name"`
	Role         Role       `bun:"role,notnull"`
	Status       UserStatus `bun:"status,notnull"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
