package middleware

import (
	"net/http"

	"notes-app/src/config"
	"notes-app/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware CORS設定用のmiddleware
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		MaxAge:         86400, // 24時間
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)

		// プリフライトはrs/corsがステータスまで書き込む
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			logger.WithFields(logrus.Fields{
				"origin": c.GetHeader("Origin"),
				"uri":    c.Request.RequestURI,
			}).Debug("CORS preflight request handled")
			c.Abort()
			return
		}

		c.Next()
	}
}
