package middleware

import (
	"net/http"
	"strings"

	"notes-app/src/domain"
	"notes-app/src/logger"
	"notes-app/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// UserIDKey 認証済みユーザーIDのコンテキストキー
	UserIDKey = "user_id"
	// UserKey 認証済みユーザーのコンテキストキー
	UserKey = "user"

	unauthorizedMessage = "Token is invalid or expired"
)

// AuthMiddleware ユーザー認証用のmiddleware。
// 失敗理由にかかわらず同じ401レスポンスを返す
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Bearer tokenがありません")
			abortUnauthorized(c)
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			}).Warn("認証失敗: 無効なトークン")
			abortUnauthorized(c)
			return
		}

		// リクエストコンテキストにユーザー情報を設定
		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)

		logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"user_id":   user.ID,
		}).Debug("認証成功")
		c.Next()
	}
}

// CurrentUserID 認証済みユーザーIDを取得
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// CurrentUser 認証済みユーザーを取得
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": unauthorizedMessage,
	})
}
