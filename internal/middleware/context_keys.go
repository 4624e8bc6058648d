package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the acting user's ID in the context.
const actorIDKey = contextKey("actorID")

// ActorHeader is the request header carrying the acting user's identifier.
// Authentication happens upstream; this service trusts the header.
const ActorHeader = "X-Actor-ID"

// ActorExtraction reads the actor header and, when present, stores it in both
// the Gin context and the request context.
func ActorExtraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID != "" {
			c.Set(string(actorIDKey), actorID)
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), actorIDKey, actorID))
		}
		c.Next()
	}
}

// RequireActor rejects requests without an actor identifier. Mounted on
// mutating routes so every write carries attributable audit fields.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetActorFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + ActorHeader + " header"})
			return
		}
		c.Next()
	}
}

// GetActorFromContext retrieves the acting user ID from the Gin context.
// It returns the actor ID and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(actorIDKey); v != nil {
			return v.(string), true
		}
		return "", false
	}

	actorID, ok := actorVal.(string)
	if !ok {
		return "", false
	}

	return actorID, true
}
