package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createImagesTable = `
CREATE TABLE IF NOT EXISTS images (
    id SERIAL PRIMARY KEY,
    session_id VARCHAR(64) NOT NULL,
    original_url TEXT NOT NULL,
    colorized_url TEXT,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    error_message TEXT,
    public_token VARCHAR(64) NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_images_session_created ON images (session_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_images_status ON images (status);
`

// EnsureSchema creates the images table and its indexes if they do not
// exist yet. Called once on startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createImagesTable); err != nil {
		return fmt.Errorf("failed to ensure images schema: %w", err)
	}
	return nil
}
