package utils

import (
	"net/http"

	"facilities/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-booking error. Status carries the
// same codes the booking endpoints answer with, so callers branch on one key.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler turns a panic in a handler into a 500 with the usual error body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				GetLogger().Error("Handler panicked",
					zap.Any("panic", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Status:  string(models.BookingInternalError),
					Message: "Something went wrong on our side. Please try again.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError writes an error body; 5xx responses are logged as errors.
func JSONError(c *gin.Context, status int, message string, details string) {
	log := GetLogger().With(zap.Int("code", status), zap.String("path", c.FullPath()))
	if status >= http.StatusInternalServerError {
		log.Error(message, zap.String("details", details))
	} else {
		log.Warn(message, zap.String("details", details))
	}
	c.JSON(status, ErrorResponse{Status: errorStatus(status), Message: message, Details: details})
}

// StatusInvalidInput marks a request the handlers could not bind or validate.
const StatusInvalidInput = "invalidInput"

func errorStatus(code int) string {
	switch {
	case code == http.StatusNotFound:
		return string(models.BookingNotFound)
	case code >= http.StatusInternalServerError:
		return string(models.BookingInternalError)
	default:
		return StatusInvalidInput
	}
}
