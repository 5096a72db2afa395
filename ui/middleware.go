package ui

import (
	"strings"

	"gopitch/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextUserKey = "auth_user_id"

// RequireAuth validates the bearer token and stores the caller's user id
// on the request context
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, errors.Unauthorized("missing bearer token"))
			c.Abort()
			return
		}

		userID, err := s.auth.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// currentUserID reads the authenticated user id set by RequireAuth
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
