package domain

import "time"

// Role enumerates access levels for registered users.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps free-form input onto the role enum, defaulting to USER.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Age          *int
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
