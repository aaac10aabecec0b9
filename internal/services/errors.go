package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/neurochat-backend/internal/platform/apierr"
)

var (
	ErrUnauthorized       = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
	ErrChatNotFound       = apierr.New(http.StatusNotFound, "not_found", errors.New("chat not found"))
	ErrEmptyMessage       = apierr.New(http.StatusBadRequest, "empty_message", errors.New("Empty message"))
	ErrMissingFile        = apierr.New(http.StatusBadRequest, "missing_file", errors.New("No file part"))
	ErrNoSelectedFile     = apierr.New(http.StatusBadRequest, "missing_file", errors.New("No selected file"))
	ErrUnsupportedFile    = apierr.New(http.StatusBadRequest, "unsupported_file_type", errors.New("Invalid or unsupported file type"))
	ErrInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
	ErrEmailTaken         = apierr.New(http.StatusConflict, "email_taken", errors.New("email already registered"))
	ErrMissingCredentials = apierr.New(http.StatusBadRequest, "missing_credentials", errors.New("email and password are required"))
	ErrInvalidTheme       = apierr.New(http.StatusBadRequest, "invalid_theme", errors.New("theme must be dark or light"))
)

func extractFailed(err error) error {
	return apierr.New(http.StatusInternalServerError, "extract_failed", err)
}
