package model

import (
	"errors"
	"net/http"

	"colorizer-backend/internal/shared/response"
	"colorizer-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrNoFile        = errors.New("no image file uploaded")
	ErrNotAnImage    = errors.New("file must be an image")
	ErrFileTooLarge  = errors.New("file exceeds the upload size limit")
)

var imageErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrImageNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Image not found",
	},
	ErrNoFile: {
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "No image file uploaded",
	},
	ErrNotAnImage: {
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "File must be an image",
	},
	ErrFileTooLarge: {
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "File exceeds the upload size limit",
	},
}

// HandleImageError maps a service error to an HTTP response.
// Returns false when err is nil.
func HandleImageError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, cfg := range imageErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, cfg.Status, cfg.Code, cfg.Message)
			return true
		}
	}

	logger.Error("Unhandled image error", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
