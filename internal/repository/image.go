package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
)

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Upsert stores the image and stamps its owner unconditionally. The owner
// argument must come from the resolved session identity, never from a
// request payload.
func (r *ImageRepository) Upsert(ctx context.Context, image domain.Image, ownerID string) (domain.Image, error) {
	now := time.Now().UTC()
	image.OwnerID = ownerID
	image.CreatedAt = now
	image.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO images (id, owner_id, url, prompt, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			url = excluded.url,
			prompt = excluded.prompt,
			model = excluded.model,
			updated_at = excluded.updated_at
	`, image.ID, image.OwnerID, image.URL, image.Prompt, image.Model, image.CreatedAt, image.UpdatedAt)
	return image, err
}

// ListByOwner never returns rows outside the given owner scope.
func (r *ImageRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, url, prompt, model, created_at, updated_at
		FROM images
		WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.OwnerID, &img.URL, &img.Prompt, &img.Model, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes the image only when it is owned by requesterID and reports
// whether a row was removed. A matching id with a different owner deletes
// nothing and returns false, indistinguishable from absence.
func (r *ImageRepository) Delete(ctx context.Context, id, requesterID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM images
		WHERE id = $1 AND owner_id = $2
	`, id, requesterID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
