package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
)

// CartLine is the transport shape for a single cart row with resolved pricing.
type CartLine struct {
	ID          uuid.UUID       `json:"id"`
	ArtworkID   uuid.UUID       `json:"artwork_id"`
	ArtworkName string          `json:"artwork_name"`
	Artist      string          `json:"artist"`
	Color       *string         `json:"color,omitempty"`
	Size        *string         `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AddedAt     time.Time       `json:"added_at"`
}

// CartView is the priced snapshot returned to clients and cached in Redis.
type CartView struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func buildView(items []models.CartItem) *CartView {
	view := &CartView{
		Items:    make([]CartLine, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	for i := range items {
		item := &items[i]
		line := CartLine{
			ID:        item.ID,
			ArtworkID: item.ArtworkID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
			AddedAt:   item.CreatedAt,
		}
		if item.Artwork != nil {
			line.ArtworkName = item.Artwork.Name
			line.Artist = item.Artwork.Artist
			unit := item.Artwork.BasePrice
			if item.ColorVariant != nil {
				unit = unit.Add(item.ColorVariant.PriceIncrement)
				line.Color = &item.ColorVariant.Color
			}
			if item.SizeVariant != nil {
				unit = unit.Add(item.SizeVariant.PriceIncrement)
				line.Size = &item.SizeVariant.Size
			}
			line.UnitPrice = unit
		}
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.Items = append(view.Items, line)
	}
	return view
}
