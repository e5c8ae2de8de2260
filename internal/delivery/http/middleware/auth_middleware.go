package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"go-hackathon-backend/config"
	"go-hackathon-backend/internal/delivery/http/response"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the identity provider's bearer token and
// places {AuthID, Email, AuthLevel} on the context. The provider is
// the system of record for who a user is and their level; no local
// session state exists.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				// HS256 - Use Secret
				if cfg.AuthJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but AUTH_JWT_SECRET is not configured")
				}
				return []byte(cfg.AuthJWTSecret), nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				// RS256 - Use JWKS
				return jwksProvider.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})

		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			c.Abort()
			return
		}

		// The auth level is issued by the provider, either as a flat
		// claim or inside app_metadata. New identities default to hacker.
		level, _ := claims["authLevel"].(string)
		if level == "" {
			if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
				level, _ = meta["authLevel"].(string)
			}
		}
		if level == "" {
			level = domain.LevelHacker
		}

		c.Set(string(domain.KeyAuthID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyAuthLevel), level)

		c.Next()
	}
}

// RequireLevel rejects callers whose auth level is not in the allow list.
func RequireLevel(levels ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(levels))
	for _, l := range levels {
		allowed[l] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(string(domain.KeyAuthLevel))] {
			response.Error(c, http.StatusForbidden, "Insufficient privileges", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
