// README: Panic recovery that logs and answers 500.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"privatehire/internal/logging"
)

func Recovery(log logging.Logger) gin.HandlerFunc {
	log = log.Action("recover")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in handler", fmt.Errorf("%v", r), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
