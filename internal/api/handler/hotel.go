package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/catalog"
	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/navigation"
)

// HotelHandler handles catalog endpoints.
type HotelHandler struct {
	catalog catalog.Repository
	logger  zerolog.Logger
}

// NewHotelHandler creates a new HotelHandler.
func NewHotelHandler(repo catalog.Repository, logger zerolog.Logger) *HotelHandler {
	return &HotelHandler{
		catalog: repo,
		logger:  logger,
	}
}

// ListHotels handles GET /v1/hotels - list properties.
func (h *HotelHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.catalog.ListHotels(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("listing hotels")
		response.InternalError(w, r, "could not load hotels")
		return
	}

	list := models.HotelList{Items: make([]models.HotelSummary, 0, len(hotels))}
	for _, hotel := range hotels {
		list.Items = append(list.Items, models.HotelSummary{
			ID:       hotel.ID,
			Name:     hotel.Name,
			Address:  hotel.Address,
			Location: toPoint(hotel.Location),
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetHotel handles GET /v1/hotels/{hotelId} - get a property with its suites.
func (h *HotelHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	hotel, ok := h.load(w, r)
	if !ok {
		return
	}

	suites := hotel.Suites
	if suites == nil {
		suites = []booking.Suite{}
	}
	response.JSON(w, r, http.StatusOK, models.Hotel{
		ID:       hotel.ID,
		Name:     hotel.Name,
		Address:  hotel.Address,
		Location: toPoint(hotel.Location),
		Suites:   suites,
	})
}

// GetDirections handles GET /v1/hotels/{hotelId}/directions?platform=ios -
// a link opening turn-by-turn directions in the native maps app.
func (h *HotelHandler) GetDirections(w http.ResponseWriter, r *http.Request) {
	hotel, ok := h.load(w, r)
	if !ok {
		return
	}

	platform := navigation.ParsePlatform(r.URL.Query().Get("platform"))
	response.JSON(w, r, http.StatusOK, models.DirectionsLink{
		URL:      navigation.DirectionsLink(platform, hotel.Location, hotel.Name),
		Platform: string(platform),
	})
}

func (h *HotelHandler) load(w http.ResponseWriter, r *http.Request) (*catalog.Hotel, bool) {
	hotelID := pathID(r, "hotelId")
	hotel, err := h.catalog.GetHotel(r.Context(), hotelID)
	if err != nil {
		if errors.Is(err, catalog.ErrHotelNotFound) {
			response.NotFound(w, r, "hotel not found")
			return nil, false
		}
		h.logger.Error().Err(err).Str("hotel_id", hotelID).Msg("loading hotel")
		response.InternalError(w, r, "could not load hotel")
		return nil, false
	}
	return hotel, true
}

func toPoint(c geo.Coordinate) models.Point {
	return models.Point{Lat: c.Lat, Lon: c.Lon}
}
