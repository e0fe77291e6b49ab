package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bizflow/internal/usercontext"
)

func (s *Server) GetEntitlement(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.subscriptionSvc.Entitlement(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InitiateUpgrade(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subscriptionSvc.InitiateUpgrade(c.Request.Context(), userID, user.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type completeUpgradeRequest struct {
	Reference string `json:"reference"`
}

func (s *Server) CompleteUpgrade(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req completeUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		AbortWithError(c, newValidationError("reference", "required", "reference is required"))
		return
	}

	lockToken, acquired, err := s.authLimiter.TryVerifyLock(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !acquired {
		AbortWithError(c, ErrTooManyRequests)
		return
	}
	defer func() {
		_ = s.authLimiter.ReleaseVerifyLock(c.Request.Context(), reference, lockToken)
	}()

	resp, err := s.subscriptionSvc.CompleteUpgrade(c.Request.Context(), userID, reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
