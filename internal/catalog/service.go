package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

// Reader is the catalog read surface controllers depend on.
type Reader interface {
	GetArtwork(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	ListArtworks(ctx context.Context, params pagination.Params) (*ArtworkList, error)
}

// ArtworkList wraps a page of artworks plus the next page cursor.
type ArtworkList struct {
	Artworks   []models.Artwork `json:"artworks"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type repository interface {
	FindArtworkByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	ListArtworks(ctx context.Context, params pagination.Params) ([]models.Artwork, string, error)
}

type service struct {
	repo repository
}

// NewService builds the catalog read service.
func NewService(repo repository) (Reader, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetArtwork(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	artwork, err := s.repo.FindArtworkByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading artwork")
	}
	return artwork, nil
}

func (s *service) ListArtworks(ctx context.Context, params pagination.Params) (*ArtworkList, error) {
	artworks, next, err := s.repo.ListArtworks(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing artworks")
	}
	return &ArtworkList{Artworks: artworks, NextCursor: next}, nil
}
