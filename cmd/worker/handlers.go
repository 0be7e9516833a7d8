package main

import (
	"github.com/hibiken/asynq"

	imageJob "colorizer-backend/internal/domains/image/job"
	"colorizer-backend/internal/shared"
	"colorizer-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	colorize  *imageJob.ColorizeHandler
	failStale *imageJob.FailStaleHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		colorize:  imageJob.NewColorizeHandler(c.ImageService),
		failStale: imageJob.NewFailStaleHandler(c.ImageService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeColorizeImage, h.colorize.ProcessTask)
	mux.HandleFunc(shared.TypeFailStaleJobs, h.failStale.ProcessTask)
}
