// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
)

// respondError converts a service error into an HTTP status + JSON message.
// Every error is resolved here; nothing propagates past the handler.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		// Keep the cause in the request log, not the response body
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": apperror.PublicMessage(err),
	})
}
