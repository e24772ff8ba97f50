package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names the entity store a token identifier must resolve in.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return r, true
	}
	return "", false
}

// Principal is the caller identity established by authorizing a token against a role.
type Principal struct {
	Role       Role
	Identifier string
	ID         uuid.UUID
}

func (p *Principal) Is(role Role) bool {
	return p != nil && p.Role == role
}

// Credentials carries a login identifier (username for admins, email otherwise) and password.
type Credentials struct {
	Identifier string
	Password   string
}

type LoginRequest struct {
	Username string `json:"username" binding:"omitempty,min=3"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
