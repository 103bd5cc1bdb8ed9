package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware records request counts labelled with the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
