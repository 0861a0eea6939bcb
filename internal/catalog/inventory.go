package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory applies stock movements for an order line across the base
// artwork counter and any selected variant counters.
type Inventory struct {
	repo *Repository
}

// NewInventory wraps the catalog repository with stock movement helpers.
func NewInventory(repo *Repository) (*Inventory, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Inventory{repo: repo}, nil
}

// Consume subtracts qty from every counter the line touches. It fails with a
// state-conflict error when any counter cannot cover the quantity.
func (i *Inventory) Consume(ctx context.Context, tx *gorm.DB, artworkID uuid.UUID, colorVariantID, sizeVariantID *uuid.UUID, qty int) error {
	repo := i.repo.WithTx(tx)
	if err := repo.DecrementArtworkStock(ctx, artworkID, qty); err != nil {
		return err
	}
	if colorVariantID != nil {
		if err := repo.DecrementColorVariantStock(ctx, *colorVariantID, qty); err != nil {
			return err
		}
	}
	if sizeVariantID != nil {
		if err := repo.DecrementSizeVariantStock(ctx, *sizeVariantID, qty); err != nil {
			return err
		}
	}
	return nil
}

// Restore returns qty to every counter the line touched.
func (i *Inventory) Restore(ctx context.Context, tx *gorm.DB, artworkID uuid.UUID, colorVariantID, sizeVariantID *uuid.UUID, qty int) error {
	repo := i.repo.WithTx(tx)
	if err := repo.IncrementArtworkStock(ctx, artworkID, qty); err != nil {
		return err
	}
	if colorVariantID != nil {
		if err := repo.IncrementColorVariantStock(ctx, *colorVariantID, qty); err != nil {
			return err
		}
	}
	if sizeVariantID != nil {
		if err := repo.IncrementSizeVariantStock(ctx, *sizeVariantID, qty); err != nil {
			return err
		}
	}
	return nil
}
