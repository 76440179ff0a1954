package httpinterface

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/infrastructure/auth"
	"github.com/tdex-network/custodyd/internal/infrastructure/metrics"
)

const bearerPrefix = "Bearer "

// withAuth verifies the bearer token, if any, and adds its claims to the
// request context. Requests without token go through, it's up to the
// services to require the proper authority.
func withAuth(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		if token == header {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid authorization header format"},
			)
			return
		}

		claims, err := authorizer.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ctx := auth.ContextWithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func withMetrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func withLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}

// subject returns the account the request is authenticated as, if any.
func subject(c *gin.Context) string {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		return ""
	}
	return claims.Subject
}
