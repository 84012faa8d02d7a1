package handler

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/catalog"
)

// Draft outcomes passed to DraftRecorder.
const (
	DraftSubmitted = "submitted"
	DraftInvalid   = "invalid"
	DraftFailed    = "failed"
)

// DraftRecorder observes proceed attempts. telemetry.Instruments implements it.
type DraftRecorder interface {
	RecordDraft(ctx context.Context, outcome string)
}

// BookingSheetConfig holds configuration for the BookingSheetHandler.
type BookingSheetConfig struct {
	Sheets  *booking.SheetRegistry
	Catalog catalog.Repository

	// Drafts records proceed outcomes (optional).
	Drafts DraftRecorder

	Logger zerolog.Logger
}

// BookingSheetHandler handles booking sheet endpoints. A booking sheet holds the
// suite, date range, guests and extras while the user fills in the booking form.
type BookingSheetHandler struct {
	sheets  *booking.SheetRegistry
	catalog catalog.Repository
	drafts  DraftRecorder
	logger  zerolog.Logger
}

// NewBookingSheetHandler creates a new BookingSheetHandler.
func NewBookingSheetHandler(cfg BookingSheetConfig) *BookingSheetHandler {
	return &BookingSheetHandler{
		sheets:  cfg.Sheets,
		catalog: cfg.Catalog,
		drafts:  cfg.Drafts,
		logger:  cfg.Logger,
	}
}

// CreateSheet handles POST /v1/booking-sheets - open a booking sheet for a hotel.
func (h *BookingSheetHandler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	var req models.BookingSheetCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hotel, err := h.catalog.GetHotel(r.Context(), req.HotelID)
	if err != nil {
		if errors.Is(err, catalog.ErrHotelNotFound) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "hotelId", Message: "hotel not found", Code: "NOT_FOUND"},
			})
			return
		}
		h.logger.Error().Err(err).Str("hotel_id", req.HotelID).Msg("loading hotel for booking sheet")
		response.InternalError(w, r, "could not load hotel")
		return
	}

	sheet, err := h.sheets.Create(owner(r), booking.SheetOptions{
		HotelID:         hotel.ID,
		HotelName:       hotel.Name,
		Suites:          hotel.Suites,
		SelectedSuiteID: req.SuiteID,
	})
	if err != nil {
		if errors.Is(err, booking.ErrSuiteNotFound) {
			response.BadRequest(w, r, "validation error", []models.FieldError{suiteNotFound()})
			return
		}
		h.logger.Error().Err(err).Str("hotel_id", hotel.ID).Msg("opening booking sheet")
		response.InternalError(w, r, "could not open booking sheet")
		return
	}

	response.Created(w, r, "/v1/booking-sheets/"+sheet.ID, sheet.View())
}

// GetSheet handles GET /v1/booking-sheets/{sheetId} - current selection and quote.
func (h *BookingSheetHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, sheet.View())
}

// DeleteSheet handles DELETE /v1/booking-sheets/{sheetId} - dismiss the sheet.
func (h *BookingSheetHandler) DeleteSheet(w http.ResponseWriter, r *http.Request) {
	if err := h.sheets.Delete(owner(r), pathID(r, "sheetId")); err != nil {
		response.NotFound(w, r, "booking sheet not found")
		return
	}
	response.NoContent(w, r)
}

// SelectSuite handles PUT /v1/booking-sheets/{sheetId}/suite - change the suite.
func (h *BookingSheetHandler) SelectSuite(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var req models.SelectSuiteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := sheet.SelectSuite(req.SuiteID); err != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{suiteNotFound()})
		return
	}
	response.JSON(w, r, http.StatusOK, sheet.View())
}

// PressDay handles POST /v1/booking-sheets/{sheetId}/days - a calendar day press.
// The first press sets check-in, a later day sets check-out, and a press on a
// complete range starts over.
func (h *BookingSheetHandler) PressDay(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var req models.DayPressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	day, err := civil.ParseDate(req.Date)
	if err != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "date", Message: "must be a calendar date (YYYY-MM-DD)", Code: "INVALID_FORMAT"},
		})
		return
	}

	if err := sheet.PressDay(day); err != nil {
		field := models.FieldError{Field: "date", Message: err.Error(), Code: "INVALID_VALUE"}
		if errors.Is(err, booking.ErrDayInPast) {
			field.Message = "days before today cannot be selected"
			field.Code = "DAY_IN_PAST"
		}
		response.BadRequest(w, r, "validation error", []models.FieldError{field})
		return
	}
	response.JSON(w, r, http.StatusOK, sheet.View())
}

// AdjustGuests handles POST /v1/booking-sheets/{sheetId}/guests - one counter step.
func (h *BookingSheetHandler) AdjustGuests(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var req models.GuestsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	field, err := booking.ParseGuestField(req.Field)
	if err != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "field", Message: err.Error(), Code: "INVALID_VALUE"},
		})
		return
	}

	if req.Action == "increment" {
		sheet.IncrementGuests(field)
	} else {
		sheet.DecrementGuests(field)
	}
	response.JSON(w, r, http.StatusOK, sheet.View())
}

// SetExtras handles PATCH /v1/booking-sheets/{sheetId}/extras - promo code and notes.
func (h *BookingSheetHandler) SetExtras(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var req models.ExtrasRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := sheet.SetExtras(req.PromoCode, req.Notes); err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, r, "validation error", problemFields(verr.Problems))
			return
		}
		response.InternalError(w, r, "could not update extras")
		return
	}
	response.JSON(w, r, http.StatusOK, sheet.View())
}

// Proceed handles POST /v1/booking-sheets/{sheetId}/proceed - submit the selection.
// A selection that cannot continue is answered with 422 listing every problem.
func (h *BookingSheetHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	draft, err := sheet.Proceed(r.Context())
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			h.record(r.Context(), DraftInvalid)
			response.Unprocessable(w, r, "booking cannot continue", problemFields(verr.Problems))
			return
		}
		h.record(r.Context(), DraftFailed)
		response.BadGateway(w, r, "booking request could not be submitted, please try again")
		return
	}

	h.record(r.Context(), DraftSubmitted)
	response.Accepted(w, r, "", models.BookingDraft{
		Draft:   *draft,
		SheetID: sheet.ID,
		Sheet:   sheet.View(),
	})
}

func (h *BookingSheetHandler) record(ctx context.Context, outcome string) {
	if h.drafts != nil {
		h.drafts.RecordDraft(ctx, outcome)
	}
}

func (h *BookingSheetHandler) sheet(w http.ResponseWriter, r *http.Request) (*booking.Sheet, bool) {
	sheet, err := h.sheets.Get(owner(r), pathID(r, "sheetId"))
	if err != nil {
		response.NotFound(w, r, "booking sheet not found")
		return nil, false
	}
	return sheet, true
}

func suiteNotFound() models.FieldError {
	return models.FieldError{Field: "suiteId", Message: "suite not offered by this hotel", Code: "NOT_FOUND"}
}

func problemFields(problems []booking.Problem) []models.FieldError {
	fields := make([]models.FieldError, len(problems))
	for i, p := range problems {
		fields[i] = models.FieldError{Field: p.Field, Message: p.Message, Code: p.Code}
	}
	return fields
}
