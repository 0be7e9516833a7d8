package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"colorizer-backend/internal/domains/image/model"
	"colorizer-backend/pkg/cache"
	"colorizer-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Terminal records never change, so they can be cached aggressively.
const terminalCacheTTL = 15 * time.Minute

type imageRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewImageRepository(pool *pgxpool.Pool, c cache.Cache) ImageRepository {
	return &imageRepository{pool: pool, cache: c}
}

func imageCacheKey(id int) string {
	return fmt.Sprintf("images:id:%d", id)
}

// Create inserts a new image record in processing state.
func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	query := `
        INSERT INTO images (session_id, original_url, status, public_token)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		image.SessionID,
		image.OriginalURL,
		image.Status,
		image.PublicToken,
	).Scan(&image.ID, &image.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id int) (*model.Image, error) {
	// Terminal records are served from cache when present.
	cached := &model.Image{}
	if found, err := r.cache.Get(ctx, imageCacheKey(id), cached); err == nil && found {
		return cached, nil
	}

	query := `
        SELECT id, session_id, original_url, colorized_url, status,
               error_message, public_token, created_at
        FROM images
        WHERE id = $1
    `

	image, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	r.cacheIfTerminal(ctx, image)
	return image, nil
}

func (r *imageRepository) GetByPublicToken(ctx context.Context, token string) (*model.Image, error) {
	query := `
        SELECT id, session_id, original_url, colorized_url, status,
               error_message, public_token, created_at
        FROM images
        WHERE public_token = $1
    `

	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

func (r *imageRepository) ListBySession(ctx context.Context, sessionID string) ([]*model.Image, error) {
	query := `
        SELECT id, session_id, original_url, colorized_url, status,
               error_message, public_token, created_at
        FROM images
        WHERE session_id = $1
        ORDER BY created_at DESC, id DESC
    `

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []*model.Image
	for rows.Next() {
		image := &model.Image{}
		err := rows.Scan(
			&image.ID,
			&image.SessionID,
			&image.OriginalURL,
			&image.ColorizedURL,
			&image.Status,
			&image.ErrorMessage,
			&image.PublicToken,
			&image.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}

	return images, rows.Err()
}

// UpdateResult marks a record completed. Only a colorized_url is written;
// error_message stays NULL so the status invariants hold.
func (r *imageRepository) UpdateResult(ctx context.Context, id int, colorizedURL string) error {
	query := `
        UPDATE images SET
            status = $1,
            colorized_url = $2,
            error_message = NULL
        WHERE id = $3
    `

	tag, err := r.pool.Exec(ctx, query, model.StatusCompleted, colorizedURL, id)
	if err != nil {
		return fmt.Errorf("failed to update result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}

	return nil
}

func (r *imageRepository) UpdateFailure(ctx context.Context, id int, errorMessage string) error {
	query := `
        UPDATE images SET
            status = $1,
            error_message = $2,
            colorized_url = NULL
        WHERE id = $3
    `

	tag, err := r.pool.Exec(ctx, query, model.StatusFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}

	return nil
}

// FailStale sweeps records abandoned in processing, e.g. after a worker
// crash mid-job.
func (r *imageRepository) FailStale(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	query := `
        UPDATE images SET
            status = $1,
            error_message = $2
        WHERE status = $3 AND created_at < $4
    `

	tag, err := r.pool.Exec(ctx, query, model.StatusFailed, errorMessage, model.StatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale images: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *imageRepository) scanOne(row pgx.Row) (*model.Image, error) {
	image := &model.Image{}
	err := row.Scan(
		&image.ID,
		&image.SessionID,
		&image.OriginalURL,
		&image.ColorizedURL,
		&image.Status,
		&image.ErrorMessage,
		&image.PublicToken,
		&image.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return image, nil
}

func (r *imageRepository) cacheIfTerminal(ctx context.Context, image *model.Image) {
	if !image.IsTerminal() {
		return
	}

	if err := r.cache.Set(ctx, imageCacheKey(image.ID), image, terminalCacheTTL); err != nil {
		logger.Warn("Failed to cache image record", map[string]interface{}{
			"image_id": image.ID,
			"error":    err.Error(),
		})
	}
}
