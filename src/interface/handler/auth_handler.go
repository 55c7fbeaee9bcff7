package handler

import (
	"errors"
	"net/http"

	"notes-app/src/domain"
	"notes-app/src/middleware"
	"notes-app/src/service"
	"notes-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 認証ハンドラー
type AuthHandler struct {
	authService service.AuthService
	validator   *validator.CustomValidator
	logger      *logrus.Logger
}

// NewAuthHandler 認証ハンドラーのコンストラクタ
func NewAuthHandler(authService service.AuthService, v *validator.CustomValidator, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   v,
		logger:      logger,
	}
}

// Register 新規登録
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("user_id", result.User.ID).Info("ユーザーを登録しました")
	c.JSON(http.StatusCreated, AuthResponseDTO{
		Success: true,
		Message: "Registration successful",
		Token:   result.Token,
		User:    result.User.ToPublic(),
	})
}

// Login ログイン
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.logger.WithField("client_ip", c.ClientIP()).Warn("ログイン失敗")
			c.JSON(http.StatusUnauthorized, ErrorResponseDTO{Message: "Invalid email or password"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponseDTO{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User.ToPublic(),
	})
}

// Me 認証中のユーザー情報
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, domain.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, UserResponseDTO{Success: true, User: user.ToPublic()})
}
