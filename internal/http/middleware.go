package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messagely/internal/auth"
)

const identityKey = "identity"

// requireIdentity resolves the bearer token and stores the username for identity().
func (h *Handler) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		username, err := h.guard.ResolveIdentity(token)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Set(identityKey, username)
		c.Next()
	}
}

// identity returns the username resolved by requireIdentity, or "" if none.
func identity(c *gin.Context) string {
	return c.GetString(identityKey)
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if who := identity(c); who != "" {
			entry = entry.WithField("identity", who)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

