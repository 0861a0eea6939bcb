package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/internal/catalog"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	CatalogRepo  *catalog.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error)
	AddItem(ctx context.Context, userID, artworkID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, artworkID uuid.UUID) error
}

type service struct {
	wishlistRepo *Repository
	catalogRepo  *catalog.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		catalogRepo:  params.CatalogRepo,
	}, nil
}

// GetWishlist returns the user's saved artworks, newest first.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist")
	}
	return toDTOs(items), nil
}

// AddItem ensures the artwork exists and adds it to the wishlist.
func (s *service) AddItem(ctx context.Context, userID, artworkID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if artworkID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "artwork id is required")
	}
	if _, err := s.catalogRepo.FindArtworkByID(ctx, artworkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "artwork not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading artwork")
	}
	return s.wishlistRepo.Add(ctx, userID, artworkID)
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, artworkID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.wishlistRepo.Remove(ctx, userID, artworkID)
}
