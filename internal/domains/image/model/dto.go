package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var imageMimePattern = regexp.MustCompile(`^image/`)

// UploadRequest describes an incoming upload, validated synchronously
// before any record is created.
type UploadRequest struct {
	Filename  string
	MimeType  string
	SizeBytes int64
}

// Validate checks the declared upload shape. The size ceiling is
// configuration, so the service enforces it separately.
func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MimeType,
			validation.Required.Error("content type is required"),
			validation.Match(imageMimePattern).Error("file must be an image"),
		),
		validation.Field(&r.SizeBytes,
			validation.Required.Error("file is empty"),
			validation.Min(int64(1)).Error("file is empty"),
		),
	)
}

// ImageResponse is the owner view of a record. The public token is
// included so the owner can build share links.
type ImageResponse struct {
	ID           int       `json:"id"`
	OriginalURL  string    `json:"originalUrl"`
	ColorizedURL *string   `json:"colorizedUrl"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage"`
	PublicToken  string    `json:"publicToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicImageResponse is the subset safe for token-based public viewing:
// no error details and no share token.
type PublicImageResponse struct {
	ID           int       `json:"id"`
	OriginalURL  string    `json:"originalUrl"`
	ColorizedURL *string   `json:"colorizedUrl"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func ToImageResponse(img *Image) *ImageResponse {
	return &ImageResponse{
		ID:           img.ID,
		OriginalURL:  img.OriginalURL,
		ColorizedURL: img.ColorizedURL,
		Status:       img.Status,
		ErrorMessage: img.ErrorMessage,
		PublicToken:  img.PublicToken,
		CreatedAt:    img.CreatedAt,
	}
}

func ToImageResponseList(images []*Image) []*ImageResponse {
	out := make([]*ImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, ToImageResponse(img))
	}
	return out
}

func ToPublicImageResponse(img *Image) *PublicImageResponse {
	return &PublicImageResponse{
		ID:           img.ID,
		OriginalURL:  img.OriginalURL,
		ColorizedURL: img.ColorizedURL,
		Status:       img.Status,
		CreatedAt:    img.CreatedAt,
	}
}
