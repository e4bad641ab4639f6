package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/constants"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/models"
)

const identityKey = "identity"

// RequireAuth checks the bearer token and stores the caller's identity in the context
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := tokens.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			code, message := apierrors.ErrCodeUnauthorized, "Authentication required"
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				code, message = apierrors.ErrCodeInvalidToken, "Token has expired"
			case errors.Is(err, auth.ErrInvalidToken):
				code, message = apierrors.ErrCodeInvalidToken, "Invalid token"
			}
			apierrors.AbortWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(code, message))
			return
		}

		c.Set(identityKey, identity)
		c.Set(constants.ContextKeyUserID, identity.UserID)
		c.Set(constants.ContextKeyOrganizationID, identity.OrganizationID)
		c.Set(constants.ContextKeyRole, identity.Role)
		c.Set(constants.ContextKeyEmail, identity.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetIdentity retrieves the authenticated caller from context
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok && identity != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}

// GetOrganizationID retrieves the caller's organization ID. It is the only
// tenant scope handlers may use.
func GetOrganizationID(c *gin.Context) (string, bool) {
	orgID := c.GetString(constants.ContextKeyOrganizationID)
	return orgID, orgID != ""
}

// GetRole retrieves the caller's role from context
func GetRole(c *gin.Context) models.UserRole {
	role, _ := c.Get(constants.ContextKeyRole)
	r, _ := role.(models.UserRole)
	return r
}
