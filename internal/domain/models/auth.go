package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims are the JWT claims the engine cares about: just enough to
// attribute a content change to a person. Role/permission checks live in the
// gateway, not here.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
