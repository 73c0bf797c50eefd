package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ramprakash852/AI-storyteller/services"
)

// respondError maps a service error to its HTTP status and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error_code": "not_found",
			"message":    "Resource not found",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error_code": "forbidden",
			"message":    "Unauthorized access to this resource",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error_code": "conflict",
			"message":    "Resource already exists",
		})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code": "invalid_request",
			"message":    err.Error(),
		})
	case errors.Is(err, services.ErrInvalidLLMOutput):
		c.JSON(http.StatusBadGateway, gin.H{
			"error_code": "invalid_model_output",
			"message":    "The model returned an unusable response, please retry",
		})
	case errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{
			"error_code": "upstream_error",
			"message":    "An upstream service failed, please retry",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error_code": "internal_error",
			"message":    "Something went wrong",
		})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error_code": "invalid_request",
		"message":    message,
	})
}
