package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"colorizer-backend/internal/domains/image/model"
	"colorizer-backend/internal/domains/image/repository"
	"colorizer-backend/internal/shared"
	"colorizer-backend/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const genericFailureMessage = "colorization failed"

type imageService struct {
	repo           repository.ImageRepository
	colorizer      Colorizer
	archive        ObjectArchive // optional, nil disables archiving
	queue          TaskEnqueuer
	maxUploadBytes int64
	jobTimeout     time.Duration
}

func NewImageService(
	repo repository.ImageRepository,
	colorizer Colorizer,
	archive ObjectArchive,
	queue TaskEnqueuer,
	maxUploadBytes int64,
	jobTimeout time.Duration,
) ImageService {
	return &imageService{
		repo:           repo,
		colorizer:      colorizer,
		archive:        archive,
		queue:          queue,
		maxUploadBytes: maxUploadBytes,
		jobTimeout:     jobTimeout,
	}
}

// Submit validates synchronously, then creates the record and schedules
// the background job. No record exists for a rejected upload.
func (s *imageService) Submit(ctx context.Context, sessionID string, req model.UploadRequest, data []byte) (*model.Image, error) {
	if req.SizeBytes > s.maxUploadBytes || int64(len(data)) > s.maxUploadBytes {
		return nil, model.ErrFileTooLarge
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNotAnImage, err)
	}

	// Content sniffing so a mislabeled payload cannot slip through on
	// its declared Content-Type alone.
	if sniffed := mimetype.Detect(data); !strings.HasPrefix(sniffed.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", model.ErrNotAnImage, sniffed.String())
	}

	token, err := model.NewPublicToken()
	if err != nil {
		return nil, err
	}

	image := &model.Image{
		SessionID:   sessionID,
		OriginalURL: model.EncodeDataURL(req.MimeType, data),
		Status:      model.StatusProcessing,
		PublicToken: token,
	}

	if err := s.repo.Create(ctx, image); err != nil {
		return nil, err
	}

	s.archiveBytes(ctx, image.ID, "original", data, req.MimeType)

	if err := s.enqueueColorize(image.ID); err != nil {
		// The job will never run; fail the record now instead of
		// leaving it to the stale sweeper.
		logger.Error("Failed to enqueue colorization job", err)
		if failErr := s.repo.UpdateFailure(ctx, image.ID, "failed to schedule colorization"); failErr != nil {
			logger.Error("Failed to mark unscheduled record", failErr)
		}
		return nil, fmt.Errorf("failed to schedule colorization: %w", err)
	}

	return image, nil
}

func (s *imageService) enqueueColorize(imageID int) error {
	payload, err := json.Marshal(shared.ColorizeImagePayload{ImageID: imageID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeColorizeImage, payload)

	// MaxRetry(0): the job runs at most once per submission. A transient
	// upstream failure marks the record failed; the user re-uploads.
	_, err = s.queue.Enqueue(task,
		asynq.Queue(shared.QueueColorize),
		asynq.MaxRetry(0),
		asynq.Timeout(s.jobTimeout+30*time.Second),
	)
	return err
}

func (s *imageService) ListForSession(ctx context.Context, sessionID string) ([]*model.Image, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *imageService) GetForOwner(ctx context.Context, id int, sessionID string) (*model.Image, error) {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if image.SessionID != sessionID {
		return nil, model.ErrImageNotFound
	}

	return image, nil
}

func (s *imageService) GetByPublicToken(ctx context.Context, token string) (*model.Image, error) {
	return s.repo.GetByPublicToken(ctx, token)
}

// ProcessImage drives one record to its terminal state. Adapter failures
// are written into the record, never returned to the upload caller.
func (s *imageService) ProcessImage(ctx context.Context, imageID int) error {
	image, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to load image %d: %w", imageID, err)
	}

	if image.IsTerminal() {
		// Already resolved, e.g. swept by the stale sweeper.
		log.Info().Int("image_id", imageID).Str("status", image.Status).Msg("Skipping terminal record")
		return nil
	}

	mimeType, data, err := model.DecodeDataURL(image.OriginalURL)
	if err != nil {
		return s.recordFailure(ctx, imageID, fmt.Sprintf("unreadable original: %s", err))
	}

	colorizedURL, err := s.colorizer.Colorize(ctx, data, mimeType)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = genericFailureMessage
		}
		log.Error().Err(err).Int("image_id", imageID).Msg("Colorization failed")
		return s.recordFailure(ctx, imageID, msg)
	}

	// Archive the result before touching the row: if the row update
	// fails, the computed bytes still exist in object storage.
	if resultMime, resultBytes, decErr := model.DecodeDataURL(colorizedURL); decErr == nil {
		s.archiveBytes(ctx, imageID, "colorized", resultBytes, resultMime)
	}

	if err := s.repo.UpdateResult(ctx, imageID, colorizedURL); err != nil {
		log.Error().Err(err).Int("image_id", imageID).Msg("Failed to store colorized result; archived copy retained")
		return err
	}

	log.Info().Int("image_id", imageID).Msg("Image colorized")
	return nil
}

// recordFailure writes the terminal failed state. Errors here are logged
// and swallowed; background jobs never crash the process.
func (s *imageService) recordFailure(ctx context.Context, imageID int, message string) error {
	if err := s.repo.UpdateFailure(ctx, imageID, message); err != nil {
		logger.Error("Failed to record failure", err)
		return err
	}
	return nil
}

func (s *imageService) FailStale(ctx context.Context) (int64, error) {
	// Anything in processing for more than twice the job deadline was
	// abandoned, e.g. by a worker crash mid-job.
	cutoff := time.Now().Add(-2 * s.jobTimeout)

	swept, err := s.repo.FailStale(ctx, cutoff, "colorization was abandoned before completing")
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		logger.Warn("Swept stale processing records", map[string]interface{}{
			"count": swept,
		})
	}

	return swept, nil
}

// archiveBytes is best effort: the database rows stay authoritative and
// an archive failure must not fail the request or the job.
func (s *imageService) archiveBytes(ctx context.Context, imageID int, kind string, data []byte, mimeType string) {
	if s.archive == nil {
		return
	}

	ext := "bin"
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		ext = sub
	}

	key := fmt.Sprintf("images/%d/%s.%s", imageID, kind, ext)
	if _, err := s.archive.Upload(ctx, key, data, mimeType); err != nil {
		logger.Warn("Failed to archive image bytes", map[string]interface{}{
			"image_id": imageID,
			"kind":     kind,
			"error":    err.Error(),
		})
	}
}
