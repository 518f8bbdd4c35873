package auth

import "proposalforge/internal/domain/models"

// JWTVerifier validates bearer tokens issued by the identity provider.
// The middleware stays agnostic to where the keys come from.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
