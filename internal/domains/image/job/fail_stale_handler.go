package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"colorizer-backend/internal/domains/image/service"
)

// FailStaleHandler sweeps records stuck in the processing state after
// their worker died without reporting a result.
type FailStaleHandler struct {
	imageService service.ImageService
}

func NewFailStaleHandler(imageService service.ImageService) *FailStaleHandler {
	return &FailStaleHandler{imageService: imageService}
}

func (h *FailStaleHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	swept, err := h.imageService.FailStale(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Stale job sweep failed")
		return fmt.Errorf("fail stale jobs: %w", err)
	}

	if swept > 0 {
		log.Warn().
			Int64("count", swept).
			Msg("Marked abandoned colorization jobs as failed")
	}

	return nil
}
