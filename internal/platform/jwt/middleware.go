package jwtmw

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EnvKeyJWTSecret is the environment variable holding the signing key.
const EnvKeyJWTSecret = "JWT_SECRET"

// Gin context keys populated by AuthRequired.
const (
	ContextUserGuid  = "userGuid"
	ContextUserLogin = "userLogin"
)

// ActiveChecker reports whether the user a token names is still active.
// Admin status and revocation can change between token issuance and use,
// so the check runs against the store on every request.
type ActiveChecker interface {
	IsUserActive(ctx context.Context, guid uuid.UUID) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates JWT access
// tokens and restricts access to authenticated, still-active users only.
func AuthRequired(active ActiveChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. Load secret key from environment variable
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 3. Parse and verify JWT signature
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			// Check signing algorithm (only HMAC allowed)
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			// Validation error or invalid token
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 4. Extract claims (payload)
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		guidStr, _ := claims[ClaimGuid].(string)
		guid, parseErr := uuid.Parse(guidStr)
		login, _ := claims[ClaimLogin].(string)
		if parseErr != nil || login == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 5. Reject tokens of users revoked after issuance
		ok, err = active.IsUserActive(c.Request.Context(), guid)
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user is not active"})
			return
		}

		c.Set(ContextUserGuid, guid)
		c.Set(ContextUserLogin, login)

		// 6. Pass control to the next handler
		c.Next()
	}
}
