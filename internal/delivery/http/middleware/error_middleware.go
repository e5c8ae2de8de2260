package middleware

import (
	"errors"
	"net/http"

	"go-hackathon-backend/internal/delivery/http/response"
	"go-hackathon-backend/pkg/apperror"
	"go-hackathon-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				var detail interface{}
				if len(appErr.Fields) > 0 {
					detail = gin.H{"fields": appErr.Fields}
				}
				if appErr.Err != nil {
					logger.Log.Error("Request failed", "kind", string(appErr.Kind), "error", appErr.Err)
				}
				response.Error(c, appErr.Code, appErr.Message, detail)
			} else {
				// Never expose internal error details to clients. Log the
				// actual error server-side and send a generic message.
				logger.Log.Error("Unhandled error", "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
