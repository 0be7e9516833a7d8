package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"colorizer-backend/internal/domains/image/model"
	"colorizer-backend/internal/domains/image/service"
	"colorizer-backend/internal/shared/middleware"
	"colorizer-backend/internal/shared/response"
)

// Handler - HTTP handler for the image domain
type Handler struct {
	service service.ImageService
}

// NewHandler - Constructor with DI
func NewHandler(service service.ImageService) *Handler {
	return &Handler{service: service}
}

// Upload - POST /api/images
// Accepts a multipart form with the photo under the "image" field.
func (h *Handler) Upload(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionKey)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		model.HandleImageError(c, model.ErrNoFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return
	}

	req := model.UploadRequest{
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: int64(len(data)),
	}

	img, err := h.service.Submit(c.Request.Context(), sessionID, req, data)
	if model.HandleImageError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, model.ToImageResponse(img))
}

// List - GET /api/images
// Returns the session's images, newest first.
func (h *Handler) List(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionKey)

	images, err := h.service.ListForSession(c.Request.Context(), sessionID)
	if model.HandleImageError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToImageResponseList(images))
}

// Get - GET /api/images/:id
// Owner view. Records of other sessions come back as 404.
func (h *Handler) Get(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionKey)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		model.HandleImageError(c, model.ErrImageNotFound)
		return
	}

	img, err := h.service.GetForOwner(c.Request.Context(), id, sessionID)
	if model.HandleImageError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToImageResponse(img))
}

// GetPublic - GET /api/public/:token
// Share-link view. No session required, error details withheld.
func (h *Handler) GetPublic(c *gin.Context) {
	img, err := h.service.GetByPublicToken(c.Request.Context(), c.Param("token"))
	if model.HandleImageError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToPublicImageResponse(img))
}
