package auth

import (
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.ProfileRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID         `json:"user_id"`
	Role   enums.ProfileRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the bearer may run supplier assignment.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.ProfileRoleAdmin
}
