package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/redis"
)

type artworkLoader interface {
	FindArtworkByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
}

// CartRepository defines the persistence surface the service depends on.
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error)
	FindLine(ctx context.Context, userID, artworkID uuid.UUID, colorVariantID, sizeVariantID *uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// Service exposes cart operations keyed by the authenticated user.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	catalog  artworkLoader
	cache    redis.CartCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack. The cache is
// optional; a nil cache disables snapshot caching.
func NewService(repo CartRepository, catalog artworkLoader, cache redis.CartCache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &service{
		repo:     repo,
		catalog:  catalog,
		cache:    cache,
		cacheTTL: cacheTTL,
		logg:     logg,
	}, nil
}

// AddItemInput captures the payload for adding an artwork to the cart.
type AddItemInput struct {
	ArtworkID      uuid.UUID
	ColorVariantID *uuid.UUID
	SizeVariantID  *uuid.UUID
	Quantity       int
}

// GetCart returns the priced cart snapshot, served from cache when fresh.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if cached := s.readCache(ctx, userID); cached != nil {
		return cached, nil
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	view := buildView(items)
	s.writeCache(ctx, userID, view)
	return view, nil
}

// AddItem validates the artwork/variant selection against current stock and
// merges the line into any existing one for the same combination.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	artwork, err := s.catalog.FindArtworkByID(ctx, input.ArtworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading artwork")
	}

	available, err := availableStock(artwork, input.ColorVariantID, input.SizeVariantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLine(ctx, userID, input.ArtworkID, input.ColorVariantID, input.SizeVariantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up cart line")
	}

	requested := input.Quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if requested > available {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock for requested quantity").
			WithDetails(map[string]any{"available": available, "requested": requested})
	}

	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, requested); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
		}
	} else {
		line := &models.CartItem{
			UserID:         userID,
			ArtworkID:      input.ArtworkID,
			ColorVariantID: input.ColorVariantID,
			SizeVariantID:  input.SizeVariantID,
			Quantity:       input.Quantity,
		}
		if _, err := s.repo.Create(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
	}

	s.invalidateCache(ctx, userID)
	return s.reload(ctx, userID)
}

// UpdateQuantity overwrites the line quantity after revalidating stock.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	item, err := s.repo.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}

	artwork, err := s.catalog.FindArtworkByID(ctx, item.ArtworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading artwork")
	}

	available, err := availableStock(artwork, item.ColorVariantID, item.SizeVariantID)
	if err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock for requested quantity").
			WithDetails(map[string]any{"available": available, "requested": quantity})
	}

	if err := s.repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}

	s.invalidateCache(ctx, userID)
	return s.reload(ctx, userID)
}

// RemoveItem deletes a single line from the user's cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	affected, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart line")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	s.invalidateCache(ctx, userID)
	return s.reload(ctx, userID)
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	view := buildView(items)
	s.writeCache(ctx, userID, view)
	return view, nil
}

// availableStock resolves the effective limit for a selection. Every selected
// counter constrains the line, so the minimum wins.
func availableStock(artwork *models.Artwork, colorVariantID, sizeVariantID *uuid.UUID) (int, error) {
	available := artwork.Stock

	if colorVariantID != nil {
		found := false
		for i := range artwork.ColorVariants {
			if artwork.ColorVariants[i].ID == *colorVariantID {
				if artwork.ColorVariants[i].Stock < available {
					available = artwork.ColorVariants[i].Stock
				}
				found = true
				break
			}
		}
		if !found {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "color variant does not belong to artwork")
		}
	}

	if sizeVariantID != nil {
		found := false
		for i := range artwork.SizeVariants {
			if artwork.SizeVariants[i].ID == *sizeVariantID {
				if artwork.SizeVariants[i].Stock < available {
					available = artwork.SizeVariants[i].Stock
				}
				found = true
				break
			}
		}
		if !found {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "size variant does not belong to artwork")
		}
	}

	return available, nil
}

func (s *service) readCache(ctx context.Context, userID uuid.UUID) *CartView {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CartKey(userID.String()))
	if err != nil {
		if !redis.IsNil(err) {
			s.logg.Warn(ctx, "cart cache read failed")
		}
		return nil
	}
	var view CartView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		s.logg.Warn(ctx, "cart cache entry corrupt")
		return nil
	}
	return &view
}

func (s *service) writeCache(ctx context.Context, userID uuid.UUID, view *CartView) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CartKey(userID.String()), string(payload), s.cacheTTL); err != nil {
		s.logg.Warn(ctx, "cart cache write failed")
	}
}

func (s *service) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CartKey(userID.String())); err != nil {
		s.logg.Warn(ctx, "cart cache invalidation failed")
	}
}
