package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/catalog"
)

type draftOutcomes struct {
	mu       sync.Mutex
	outcomes []string
}

func (d *draftOutcomes) RecordDraft(_ context.Context, outcome string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outcomes = append(d.outcomes, outcome)
}

func newSheetRouter(t *testing.T, proceed booking.ProceedHandler, drafts DraftRecorder) *chi.Mux {
	t.Helper()

	sheets := booking.NewSheetRegistry(booking.SheetRegistryConfig{
		Handler:  proceed,
		Location: time.UTC,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	h := NewBookingSheetHandler(BookingSheetConfig{
		Sheets:  sheets,
		Catalog: catalog.NewSeededRepository(),
		Drafts:  drafts,
		Logger:  zerolog.Nop(),
	})

	r := newUserRouter("usr_1")
	r.Post("/sheets", h.CreateSheet)
	r.Get("/sheets/{sheetId}", h.GetSheet)
	r.Put("/sheets/{sheetId}/suite", h.SelectSuite)
	r.Post("/sheets/{sheetId}/days", h.PressDay)
	r.Post("/sheets/{sheetId}/proceed", h.Proceed)
	return r
}

func createSheet(t *testing.T, r http.Handler, req models.BookingSheetCreateRequest) booking.SheetView {
	t.Helper()
	w := serve(t, r, http.MethodPost, "/sheets", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var v booking.SheetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestBookingSheetHandler_ProceedOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		suiteID     string
		proceedErr  error
		wantStatus  int
		wantOutcome string
	}{
		{name: "submitted", suiteID: "eko-classic", wantStatus: http.StatusAccepted, wantOutcome: DraftSubmitted},
		{name: "price on request", suiteID: "eko-royal", wantStatus: http.StatusUnprocessableEntity, wantOutcome: DraftInvalid},
		{name: "handler failed", suiteID: "eko-classic", proceedErr: errors.New("publish timeout"), wantStatus: http.StatusBadGateway, wantOutcome: DraftFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := &draftOutcomes{}
			proceed := booking.ProceedFunc(func(context.Context, booking.Draft) error { return tt.proceedErr })
			r := newSheetRouter(t, proceed, drafts)

			sheet := createSheet(t, r, models.BookingSheetCreateRequest{HotelID: "htl_eko", SuiteID: tt.suiteID})

			w := serve(t, r, http.MethodPost, "/sheets/"+sheet.ID+"/proceed", nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, []string{tt.wantOutcome}, drafts.outcomes)
		})
	}
}

func TestBookingSheetHandler_ProceedProblemsAreFieldErrors(t *testing.T) {
	r := newSheetRouter(t, nil, nil)
	sheet := createSheet(t, r, models.BookingSheetCreateRequest{HotelID: "htl_eko", SuiteID: "eko-royal"})

	w := serve(t, r, http.MethodPost, "/sheets/"+sheet.ID+"/proceed", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	p := problemOf(t, w)
	assert.Equal(t, models.ProblemTypeBookingInvalid, p.Type)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, models.FieldError{
		Field:   "suite",
		Message: "this suite has no published price",
		Code:    booking.ProblemPriceUnavailable,
	}, p.Errors[0])
}

func TestBookingSheetHandler_SelectSuite(t *testing.T) {
	r := newSheetRouter(t, nil, nil)
	sheet := createSheet(t, r, models.BookingSheetCreateRequest{HotelID: "htl_ikoyi"})
	assert.Equal(t, "ikg-studio", sheet.SuiteID)

	w := serve(t, r, http.MethodPut, "/sheets/"+sheet.ID+"/suite", models.SelectSuiteRequest{SuiteID: "ikg-2bed"})
	require.Equal(t, http.StatusOK, w.Code)

	var v booking.SheetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "ikg-2bed", v.SuiteID)
	assert.Equal(t, int64(120000), v.Quote.PricePerNight)
}

func TestBookingSheetHandler_PressDayRestartsCompleteRange(t *testing.T) {
	r := newSheetRouter(t, nil, nil)
	sheet := createSheet(t, r, models.BookingSheetCreateRequest{HotelID: "htl_lekki"})
	path := "/sheets/" + sheet.ID + "/days"

	for _, d := range []string{"2026-03-02", "2026-03-04"} {
		require.Equal(t, http.StatusOK, serve(t, r, http.MethodPost, path, models.DayPressRequest{Date: d}).Code)
	}
	w := serve(t, r, http.MethodPost, path, models.DayPressRequest{Date: "2026-03-10"})
	require.Equal(t, http.StatusOK, w.Code)

	var v booking.SheetView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "2026-03-10", v.CheckIn.String())
	assert.Nil(t, v.CheckOut)
	assert.True(t, v.Quote.CheckOutProvisional)
	assert.Equal(t, 1, v.Quote.Nights)
}

func TestBookingSheetHandler_UnknownSheet(t *testing.T) {
	r := newSheetRouter(t, nil, nil)

	w := serve(t, r, http.MethodGet, "/sheets/bks_missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "booking sheet not found", problemOf(t, w).Detail)
}

func TestBookingSheetHandler_UnknownHotel(t *testing.T) {
	r := newSheetRouter(t, nil, nil)

	w := serve(t, r, http.MethodPost, "/sheets", models.BookingSheetCreateRequest{HotelID: "htl_missing"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	p := problemOf(t, w)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "hotelId", p.Errors[0].Field)
	assert.Equal(t, "NOT_FOUND", p.Errors[0].Code)
}
