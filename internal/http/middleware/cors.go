package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the listed origins with credentials so the session cookie
// travels on cross-origin calls from the front end.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}
