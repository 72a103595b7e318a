package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. Server errors are tagged
// [ERROR] so they stand out from routine traffic.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		tag := "[HTTP]"
		if c.Writer.Status() >= 500 {
			tag = "[ERROR]"
		}
		log.Printf("%s %s %s -> %d (%s, %dB) rid=%s customer=%d ip=%s",
			tag, c.Request.Method, path, c.Writer.Status(),
			time.Since(start).Round(time.Microsecond), c.Writer.Size(),
			GetRequestID(c), CustomerID(c), c.ClientIP(),
		)
	}
}
