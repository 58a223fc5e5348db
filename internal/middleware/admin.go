package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
	"finboard/internal/models"
)

// AdminLookup loads the user behind an authenticated request.
type AdminLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// RequireAdmin rejects requests whose user is not an active administrator.
// It must run after AuthMiddleware.
func RequireAdmin(lookup AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := lookup.GetUserByID(userID)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code != apperrors.ErrUserNotFound.Code {
				logger.Get().Errorw("admin lookup failed", "user_id", userID, "error", err)
				abortWithError(c, apperrors.ErrInternalServer)
				return
			}
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		if !user.IsAdmin || !user.IsActive {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrForbidden, "Administrator access required"))
			return
		}

		c.Next()
	}
}
