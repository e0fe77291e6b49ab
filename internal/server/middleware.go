package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bizflow/internal/usercontext"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the session cookie and scopes the request
// context to the authenticated user.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID.String())
		ctx := usercontext.WithUserID(c.Request.Context(), session.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
