package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/identity"
)

const actorContextKey = "actor"

// authMiddleware validates the bearer token and stores the actor it
// carries in the request context. Role checks stay in the services, the
// middleware only establishes who is calling.
func authMiddleware(tokens *identity.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "access token required",
			})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			message := "invalid access token"
			if errors.Is(err, identity.ErrTokenExpired) {
				message = "access token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   message,
			})
			return
		}

		c.Set(actorContextKey, claims.Actor())
		c.Next()
	}
}

// actorFromContext returns the authenticated actor placed by
// authMiddleware
func actorFromContext(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Actor{}
}
