package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/telemetry"
)

// Recovery turns panics into a 500. Panic text is only echoed back when exposeDetails is set.
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				var details any
				if exposeDetails {
					details = fmt.Sprint(rec)
				}
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", details)
			}
		}()
		c.Next()
	}
}
