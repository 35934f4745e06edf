package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope every failing endpoint returns. Error is
// the short machine-checkable message, Details the sentence shown to the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers from handler panics so one broken turn cannot take
// the whole server down with it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("Recovered from panic",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "internal server error",
					Details: "Something went wrong handling the request. Please try again.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError logs the failure and writes the standard error envelope.
func JSONError(c *gin.Context, status int, message, details string) {
	GetLogger().Warn(message, zap.String("details", details), zap.Int("status", status))
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}
