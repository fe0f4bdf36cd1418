package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slms-api/internal/middleware"
	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

// claimsFromContext retrieves the authenticated user claims set by the
// JWT middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, error) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}
