package middleware

import (
	"time"

	"notes-app/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader リクエストIDを受け渡すヘッダー
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// LoggerMiddleware リクエストごとに開始と完了を記録する
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// クライアントが付けたIDがあれば引き継ぐ
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}).Debug("リクエスト開始")

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id":    requestID,
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status_code":   status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"response_size": c.Writer.Size(),
		}
		// 認証済みならノートの所有者も残す
		if userID := CurrentUserID(c); userID != "" {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		entry := logger.WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("リクエスト完了 - サーバーエラー")
		case status >= 400:
			entry.Warn("リクエスト完了 - クライアントエラー")
		default:
			entry.Info("リクエスト完了")
		}
	}
}
