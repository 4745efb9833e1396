package mw

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ActorHeader names the user on whose behalf a request is made.
const ActorHeader = "X-User-ID"

const actorKey = "actorID"

// Actor parses ActorHeader into the request context. A missing header is
// allowed; a malformed one is rejected.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ActorHeader)
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + ActorHeader + " header"})
			return
		}
		c.Set(actorKey, id)
		c.Next()
	}
}

// RequireActor rejects requests without an acting user.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ActorHeader + " header is required"})
			return
		}
		c.Next()
	}
}

// ActorID returns the acting user set by Actor.
func ActorID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
