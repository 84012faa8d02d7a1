package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/favorites"
)

// FavoriteHandler handles a guest's favorite hotels.
type FavoriteHandler struct {
	favorites *favorites.Service
	logger    zerolog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(svc *favorites.Service, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: svc,
		logger:    logger,
	}
}

// ListFavorites handles GET /v1/favorites - the caller's hearted hotels, newest first.
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := owner(r)
	entries, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("listing favorites")
		response.InternalError(w, r, "could not load favorites")
		return
	}

	list := models.FavoriteList{Items: make([]models.Favorite, 0, len(entries))}
	for _, e := range entries {
		list.Items = append(list.Items, models.Favorite{
			ID:        e.Favorite.ID,
			HotelID:   e.Favorite.HotelID,
			CreatedAt: models.Timestamp(e.Favorite.CreatedAt),
			Hotel: models.HotelSummary{
				ID:       e.Hotel.ID,
				Name:     e.Hotel.Name,
				Address:  e.Hotel.Address,
				Location: toPoint(e.Hotel.Location),
			},
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ToggleFavorite handles POST /v1/favorites - heart a hotel, or un-heart it if already hearted.
func (h *FavoriteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req models.FavoriteToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := owner(r)
	fav, added, err := h.favorites.Toggle(r.Context(), userID, req.HotelID)
	if err != nil {
		if errors.Is(err, catalog.ErrHotelNotFound) {
			response.NotFound(w, r, "hotel not found")
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Str("hotel_id", req.HotelID).Msg("toggling favorite")
		response.InternalError(w, r, "could not update favorites")
		return
	}

	out := models.FavoriteToggle{IsFavorite: added, HotelID: req.HotelID}
	if added {
		out.FavoriteID = fav.ID
	}
	response.JSON(w, r, http.StatusOK, out)
}

// RemoveFavorite handles DELETE /v1/favorites/{hotelId} - idempotent un-heart.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := owner(r)
	hotelID := pathID(r, "hotelId")
	if err := h.favorites.Remove(r.Context(), userID, hotelID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("hotel_id", hotelID).Msg("removing favorite")
		response.InternalError(w, r, "could not update favorites")
		return
	}
	response.NoContent(w, r)
}
