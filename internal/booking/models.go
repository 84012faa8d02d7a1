// Package booking implements the booking sheet: suite selection, the two-tap
// check-in/check-out calendar, guest counts and the nightly price quote.
package booking

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
)

// Errors.
var (
	ErrSuiteNotFound   = errors.New("suite not found")
	ErrSheetNotFound   = errors.New("booking sheet not found")
	ErrDayInPast       = errors.New("day is before today")
	ErrRequestNotFound = errors.New("booking request not found")
)

// DefaultCurrency is used when a sheet does not specify one.
const DefaultCurrency = "NGN"

// Suite is a bookable room type. PricePerNight is in whole currency units;
// zero means the price is not published.
type Suite struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PricePerNight int64  `json:"pricePerNight"`
	ImageURL      string `json:"image,omitempty"`
}

// Draft is a validated booking handed to the proceed handler.
type Draft struct {
	ID                  string     `json:"id"`
	SheetID             string     `json:"sheetId"`
	UserID              string     `json:"userId"`
	HotelID             string     `json:"hotelId"`
	HotelName           string     `json:"hotelName"`
	Suite               Suite      `json:"suite"`
	CheckIn             civil.Date `json:"checkIn"`
	CheckOut            civil.Date `json:"checkOut"`
	CheckOutProvisional bool       `json:"checkOutProvisional"`
	Nights              int        `json:"nights"`
	Guests              Guests     `json:"guests"`
	PricePerNight       int64      `json:"pricePerNight"`
	Subtotal            int64      `json:"subtotal"`
	Currency            string     `json:"currency"`
	PromoCode           string     `json:"promoCode,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}
