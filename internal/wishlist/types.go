package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
)

// WishlistItemDTO wraps the artwork summary included in a wishlist row.
type WishlistItemDTO struct {
	ArtworkID uuid.UUID       `json:"artwork_id"`
	Name      string          `json:"name"`
	Artist    string          `json:"artist"`
	BasePrice decimal.Decimal `json:"base_price"`
	InStock   bool            `json:"in_stock"`
	AddedAt   time.Time       `json:"added_at"`
}

func toDTOs(items []models.WishlistItem) []WishlistItemDTO {
	dtos := make([]WishlistItemDTO, 0, len(items))
	for i := range items {
		item := &items[i]
		dto := WishlistItemDTO{
			ArtworkID: item.ArtworkID,
			AddedAt:   item.CreatedAt,
		}
		if item.Artwork != nil {
			dto.Name = item.Artwork.Name
			dto.Artist = item.Artwork.Artist
			dto.BasePrice = item.Artwork.BasePrice
			dto.InStock = item.Artwork.Stock > 0
		}
		dtos = append(dtos, dto)
	}
	return dtos
}
