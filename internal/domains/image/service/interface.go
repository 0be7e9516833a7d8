package service

import (
	"context"

	"colorizer-backend/internal/domains/image/model"

	"github.com/hibiken/asynq"
)

// ImageService sequences upload intake, background colorization and
// result reads.
type ImageService interface {
	// Submit validates the upload, creates a processing record and
	// schedules the colorization job. Returns without waiting for the
	// external service.
	Submit(ctx context.Context, sessionID string, req model.UploadRequest, data []byte) (*model.Image, error)

	// ListForSession returns the session's records, newest first.
	ListForSession(ctx context.Context, sessionID string) ([]*model.Image, error)

	// GetForOwner returns a record if it belongs to the session.
	// Missing records and foreign records both map to ErrImageNotFound,
	// so existence is never leaked across sessions.
	GetForOwner(ctx context.Context, id int, sessionID string) (*model.Image, error)

	// GetByPublicToken returns a record by its share token.
	GetByPublicToken(ctx context.Context, token string) (*model.Image, error)

	// ProcessImage runs one colorization job to its terminal state.
	// Called from the worker.
	ProcessImage(ctx context.Context, imageID int) error

	// FailStale sweeps records abandoned in processing state.
	FailStale(ctx context.Context) (int64, error)
}

// Colorizer is the external-service port the orchestrator drives.
type Colorizer interface {
	Colorize(ctx context.Context, imageBytes []byte, mimeType string) (string, error)
}

// ObjectArchive persists image bytes outside the database. The colorized
// result is archived before the row update so it survives a failed write.
type ObjectArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
