package main

import (
	"log"
	"time"

	"colorizer-backend/pkg/container"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	JobTimeout    time.Duration
}

// loadConfig derives the worker configuration from the container's
// application config.
func loadConfig(c *container.Container) *Config {
	cfg := &Config{
		RedisAddr:     c.Config.Redis.Host,
		RedisPassword: c.Config.Redis.Password,
		RedisDB:       c.Config.Redis.DB,
		Concurrency:   c.Config.Worker.Concurrency,
		JobTimeout:    c.Config.Colorizer.Timeout,
	}

	log.Printf("[Config] Redis: %s, Concurrency: %d, Job timeout: %s",
		cfg.RedisAddr, cfg.Concurrency, cfg.JobTimeout)

	return cfg
}
