package middleware

import (
	"context"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Timeout bounds the request context; handlers pass c.Request.Context() down
// to the DB and outbound calls.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
