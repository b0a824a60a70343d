package service

import (
	"context"
	"fmt"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
)

type ImageService struct {
	repo *repository.ImageRepository
}

func NewImageService(repo *repository.ImageRepository) *ImageService {
	return &ImageService{repo: repo}
}

// Save upserts the image under the session-resolved owner.
func (s *ImageService) Save(ctx context.Context, image domain.Image, ownerID string) (domain.Image, error) {
	if image.ID == "" {
		return domain.Image{}, fmt.Errorf("image id is required: %w", domain.ErrInvalidInput)
	}
	if image.URL == "" {
		return domain.Image{}, fmt.Errorf("image url is required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Upsert(ctx, image, ownerID)
}

func (s *ImageService) List(ctx context.Context, ownerID string) ([]domain.Image, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete reports ErrNotFound both when the id does not exist and when it is
// owned by someone else, so a non-owner cannot probe for existence.
func (s *ImageService) Delete(ctx context.Context, id, requesterID string) error {
	deleted, err := s.repo.Delete(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("image %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
