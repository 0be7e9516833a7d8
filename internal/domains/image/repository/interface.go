package repository

import (
	"context"
	"time"

	"colorizer-backend/internal/domains/image/model"
)

// ImageRepository is the record store for colorization jobs.
// Every write is durable before the call returns.
type ImageRepository interface {
	// Create inserts a new record, assigning id and created_at.
	Create(ctx context.Context, image *model.Image) error

	// GetByID returns a record or model.ErrImageNotFound.
	GetByID(ctx context.Context, id int) (*model.Image, error)

	// GetByPublicToken returns a record or model.ErrImageNotFound.
	GetByPublicToken(ctx context.Context, token string) (*model.Image, error)

	// ListBySession returns a session's records, newest first.
	ListBySession(ctx context.Context, sessionID string) ([]*model.Image, error)

	// UpdateResult transitions a record to completed with its colorized URL.
	UpdateResult(ctx context.Context, id int, colorizedURL string) error

	// UpdateFailure transitions a record to failed with an error message.
	UpdateFailure(ctx context.Context, id int, errorMessage string) error

	// FailStale marks processing records created before cutoff as failed.
	// Returns the number of records swept.
	FailStale(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error)
}
