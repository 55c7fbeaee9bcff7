package handler

import (
	"net/http"

	"notes-app/src/domain"
	"notes-app/src/middleware"
	"notes-app/src/usecase"
	"notes-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NoteHandler handles HTTP requests for note operations
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	validator   *validator.CustomValidator
	logger      *logrus.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteUsecase usecase.NoteUsecase, v *validator.CustomValidator, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
		validator:   v,
		logger:      logger,
	}
}

// ListNotes returns the caller's active notes
func (h *NoteHandler) ListNotes(c *gin.Context) {
	notes, err := h.noteUsecase.ListActive(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, NoteListResponseDTO{Success: true, Notes: notes})
}

// ListTrash returns the caller's trashed notes
func (h *NoteHandler) ListTrash(c *gin.Context) {
	notes, err := h.noteUsecase.ListTrashed(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, NoteListResponseDTO{Success: true, Notes: notes})
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.GetNote(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, NoteResponseDTO{Success: true, Note: note})
}

// CreateNote creates a new note
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req CreateNoteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("リクエストのバインドに失敗")
		respondBadJSON(c, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	userID := middleware.CurrentUserID(c)
	note, err := h.noteUsecase.CreateNote(c.Request.Context(), userID, usecase.CreateNoteRequest{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{"note_id": note.ID, "user_id": userID}).Info("ノートを作成しました")
	c.JSON(http.StatusCreated, NoteResponseDTO{Success: true, Message: "Note created successfully", Note: note})
}

// UpdateNote applies a partial update
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	var req UpdateNoteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("リクエストのバインドに失敗")
		respondBadJSON(c, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	note, err := h.noteUsecase.UpdateNote(c.Request.Context(), middleware.CurrentUserID(c), id, usecase.UpdateNoteRequest{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, NoteResponseDTO{Success: true, Message: "Note updated successfully", Note: note})
}

// DeleteNote moves a note to the trash
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	if _, err := h.noteUsecase.SoftDeleteNote(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponseDTO{Success: true, Message: "Note moved to trash"})
}

// RestoreNote moves a note out of the trash
func (h *NoteHandler) RestoreNote(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.RestoreNote(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, NoteResponseDTO{Success: true, Message: "Note restored successfully", Note: note})
}

// ToggleFavorite flips the favorite flag
func (h *NoteHandler) ToggleFavorite(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.ToggleFavorite(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Removed from favorites"
	if note.IsFavorite {
		message = "Added to favorites"
	}
	c.JSON(http.StatusOK, NoteResponseDTO{Success: true, Message: message, Note: note})
}

// PermanentlyDeleteNote destroys a note
func (h *NoteHandler) PermanentlyDeleteNote(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}

	userID := middleware.CurrentUserID(c)
	if err := h.noteUsecase.PermanentlyDeleteNote(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{"note_id": id, "user_id": userID}).Info("ノートを完全に削除しました")
	c.JSON(http.StatusOK, MessageResponseDTO{Success: true, Message: "Note permanently deleted"})
}

// 不正な形式のIDは存在しないノートとして扱う
func (h *NoteHandler) noteID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := h.validator.ValidateNoteID(id); err != nil {
		respondError(c, h.logger, domain.ErrNoteNotFound)
		return "", false
	}
	return id, true
}
