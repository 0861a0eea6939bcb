package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/api/responses"
	"github.com/tiimbooktu/artmarket-backend/api/validators"
	"github.com/tiimbooktu/artmarket-backend/internal/catalog"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

// ArtworkList returns a cursor-paginated page of the catalog.
func ArtworkList(svc catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := svc.ListArtworks(ctx, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]artworkResponse, 0, len(list.Artworks))
		for i := range list.Artworks {
			items = append(items, newArtworkResponse(&list.Artworks[i]))
		}
		responses.WriteSuccess(w, artworkListResponse{
			Artworks:   items,
			NextCursor: list.NextCursor,
		})
	}
}

// ArtworkDetail returns one artwork with its variants.
func ArtworkDetail(svc catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		artworkID, err := validators.ParsePathUUID(chi.URLParam(r, "artworkId"), "artwork id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		artwork, err := svc.GetArtwork(ctx, artworkID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newArtworkResponse(artwork))
	}
}

type artworkListResponse struct {
	Artworks   []artworkResponse `json:"artworks"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type artworkResponse struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Artist        string            `json:"artist"`
	Description   string            `json:"description,omitempty"`
	BasePrice     decimal.Decimal   `json:"base_price"`
	Stock         int               `json:"stock"`
	ColorVariants []variantResponse `json:"color_variants"`
	SizeVariants  []variantResponse `json:"size_variants"`
	CreatedAt     time.Time         `json:"created_at"`
}

type variantResponse struct {
	ID             uuid.UUID       `json:"id"`
	Label          string          `json:"label"`
	PriceIncrement decimal.Decimal `json:"price_increment"`
	Stock          int             `json:"stock"`
}

func newArtworkResponse(artwork *models.Artwork) artworkResponse {
	colors := make([]variantResponse, 0, len(artwork.ColorVariants))
	for _, v := range artwork.ColorVariants {
		colors = append(colors, variantResponse{
			ID:             v.ID,
			Label:          v.Color,
			PriceIncrement: v.PriceIncrement,
			Stock:          v.Stock,
		})
	}
	sizes := make([]variantResponse, 0, len(artwork.SizeVariants))
	for _, v := range artwork.SizeVariants {
		sizes = append(sizes, variantResponse{
			ID:             v.ID,
			Label:          v.Size,
			PriceIncrement: v.PriceIncrement,
			Stock:          v.Stock,
		})
	}
	return artworkResponse{
		ID:            artwork.ID,
		Name:          artwork.Name,
		Artist:        artwork.Artist,
		Description:   artwork.Description,
		BasePrice:     artwork.BasePrice,
		Stock:         artwork.Stock,
		ColorVariants: colors,
		SizeVariants:  sizes,
		CreatedAt:     artwork.CreatedAt,
	}
}
