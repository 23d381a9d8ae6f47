package server

import (
	"errors"
	"net/http"

	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	upstreamdomain "github.com/countrypulse/countrypulse/internal/upstream/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorHandlingMiddleware maps handler errors to client responses after
// the chain runs. Internal detail stays in the logs; the only error text
// surfaced to clients is the upstream-unavailable message.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, gin.H) {
	if unavailable, ok := upstreamdomain.AsUnavailable(err); ok {
		return http.StatusServiceUnavailable, gin.H{
			"error":   "External data source unavailable",
			"details": unavailable.Error(),
		}
	}

	switch {
	case errors.Is(err, countrydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, gin.H{"error": "Country not found"}
	case errors.Is(err, countrydomain.ErrInvalidSort):
		return http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": gin.H{"sort": "must be one of gdp_asc, gdp_desc, name_asc, name_desc"},
		}
	case errors.Is(err, countrydomain.ErrInvalidName):
		return http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": gin.H{"name": "is required"},
		}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal server error"}
	}
}

func classifyErrorForLog(err error) (string, string) {
	if _, ok := upstreamdomain.AsUnavailable(err); ok {
		return "upstream_unavailable", "service_unavailable"
	}
	switch {
	case errors.Is(err, countrydomain.ErrNotFound):
		return "not_found", "country_not_found"
	case errors.Is(err, countrydomain.ErrInvalidSort),
		errors.Is(err, countrydomain.ErrInvalidName):
		return "validation_error", err.Error()
	default:
		return "internal_error", "internal"
	}
}
