package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"colorizer-backend/internal/domains/image/service"
	"colorizer-backend/internal/shared"
)

// ColorizeHandler runs one colorization job from the queue.
type ColorizeHandler struct {
	imageService service.ImageService
}

func NewColorizeHandler(imageService service.ImageService) *ColorizeHandler {
	return &ColorizeHandler{imageService: imageService}
}

func (h *ColorizeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ColorizeImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal colorize payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Int("image_id", payload.ImageID).
		Msg("Processing colorization job")

	if err := h.imageService.ProcessImage(ctx, payload.ImageID); err != nil {
		log.Error().
			Err(err).
			Int("image_id", payload.ImageID).
			Msg("Colorization job did not complete")
		return fmt.Errorf("process image: %w", err)
	}

	return nil
}
