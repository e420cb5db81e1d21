package domain

import (
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ClientID *uint  `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}
