package models

import "github.com/roomy/roomy/internal/booking"

// BookingSheetCreateRequest opens a booking sheet for a hotel.
type BookingSheetCreateRequest struct {
	HotelID string `json:"hotelId" validate:"required,max=64"`
	SuiteID string `json:"suiteId,omitempty" validate:"max=64"`
}

// SelectSuiteRequest changes the current suite.
type SelectSuiteRequest struct {
	SuiteID string `json:"suiteId" validate:"required,max=64"`
}

// DayPressRequest is a calendar day press.
type DayPressRequest struct {
	// Date is a calendar date, YYYY-MM-DD.
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// GuestsRequest adjusts a guest counter by one.
type GuestsRequest struct {
	Field  string `json:"field" validate:"required,oneof=adults children"`
	Action string `json:"action" validate:"required,oneof=increment decrement"`
}

// ExtrasRequest updates the free-text extras. Omitted fields are left unchanged.
type ExtrasRequest struct {
	PromoCode *string `json:"promoCode,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// BookingDraft is the response of a successful proceed.
type BookingDraft struct {
	Draft   booking.Draft     `json:"draft"`
	SheetID string            `json:"sheetId"`
	Sheet   booking.SheetView `json:"sheet"`
}
