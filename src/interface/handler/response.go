package handler

import (
	"errors"
	"net/http"

	"notes-app/src/domain"
	"notes-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgNoteNotFound   = "Note not found"
	msgUnauthorized   = "Token is invalid or expired"
	msgInvalidRequest = "Invalid request format"
	msgRetry          = "Temporary server error, please retry"
	msgInternal       = "Internal server error"
)

// respondError maps an error kind to a status code and writes the error body
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var fieldErrs validator.ValidationErrors
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Message: fieldErrs.Error(),
			Errors:  fieldErrs.Errors,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Message: validationErr.Message,
			Errors: []validator.ValidationError{
				{Field: validationErr.Field, Message: validationErr.Message},
			},
		})
	case errors.Is(err, domain.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, ErrorResponseDTO{Message: msgNoteNotFound})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponseDTO{Message: msgUnauthorized})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponseDTO{Message: "Email already exists"})
	case errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponseDTO{Message: "Username already exists"})
	case domain.IsTransient(err):
		logger.WithError(err).Error("一時的なストレージ障害")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{Message: msgRetry})
	default:
		logger.WithError(err).Error("予期しないエラー")
		c.JSON(http.StatusInternalServerError, ErrorResponseDTO{Message: msgInternal})
	}
}

func respondBadJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponseDTO{
		Message: msgInvalidRequest,
		Errors:  []validator.ValidationError{{Field: "body", Message: err.Error()}},
	})
}
