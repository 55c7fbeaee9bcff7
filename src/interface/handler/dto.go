package handler

import (
	"notes-app/src/domain"
	"notes-app/src/validator"
)

// CreateNoteRequestDTO represents HTTP request for creating a note
type CreateNoteRequestDTO struct {
	Title string   `json:"title" validate:"required,max=200"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"omitempty,max=20,dive,max=30,safe_tag"`
}

// UpdateNoteRequestDTO represents HTTP request for a partial note update.
// An omitted or null field is left unchanged; "tags": [] clears the tags.
type UpdateNoteRequestDTO struct {
	Title *string   `json:"title" validate:"omitempty,max=200"`
	Body  *string   `json:"body" validate:"omitempty"`
	Tags  *[]string `json:"tags" validate:"omitempty,max=20,dive,max=30,safe_tag"`
}

// RegisterRequestDTO 新規登録リクエスト
type RegisterRequestDTO struct {
	Username string `json:"username" validate:"required,min=3,max=50,safe_text"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequestDTO ログインリクエスト
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NoteResponseDTO wraps a single note
type NoteResponseDTO struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Note    *domain.Note `json:"note"`
}

// NoteListResponseDTO wraps a note collection
type NoteListResponseDTO struct {
	Success bool          `json:"success"`
	Notes   []domain.Note `json:"notes"`
}

// MessageResponseDTO is returned by operations without a payload
type MessageResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResponseDTO is returned by register and login
type AuthResponseDTO struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

// UserResponseDTO is returned by /auth/me
type UserResponseDTO struct {
	Success bool              `json:"success"`
	User    domain.PublicUser `json:"user"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	Errors  []validator.ValidationError `json:"errors,omitempty"`
}
