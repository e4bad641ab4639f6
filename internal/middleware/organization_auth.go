package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"gorm.io/gorm"
)

// RequireActiveUser checks that the token's user still exists and is active in
// its organization, so deactivating a user revokes outstanding tokens.
func RequireActiveUser(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.AbortWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		user, err := userRepo.FindByID(identity.OrganizationID, identity.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.FromContext(c.Request.Context()).Error("Failed to load caller", "user_id", identity.UserID, "error", err)
				apierrors.AbortWithError(c, http.StatusInternalServerError, apierrors.NewAPIError(apierrors.ErrCodeInternalError, "Internal server error"))
				return
			}
			user = nil
		}
		if user == nil || !user.Active {
			apierrors.AbortWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "User is no longer active"))
			return
		}

		c.Next()
	}
}

// RequireRole allows the request only when the caller holds one of roles
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := allowed[GetRole(c)]; !ok {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "Your role cannot perform this action"))
			return
		}
		c.Next()
	}
}
