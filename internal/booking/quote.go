package booking

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Problem codes reported by Calculate.
const (
	ProblemSuiteMissing        = "suite_missing"
	ProblemDatesInvalid        = "dates_invalid"
	ProblemCheckInPast         = "check_in_past"
	ProblemCheckOutNotSelected = "checkout_not_selected"
	ProblemGuestsInvalid       = "guests_invalid"
	ProblemPriceUnavailable    = "price_unavailable"
	ProblemPromoCodeTooLong    = "promo_code_too_long"
	ProblemNotesTooLong        = "notes_too_long"
)

// Problem is one reason the sheet cannot proceed.
type Problem struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem blocking a booking.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		codes = append(codes, p.Code)
	}
	return "booking validation failed: " + strings.Join(codes, ", ")
}

// QuoteOptions adjusts validation.
type QuoteOptions struct {
	// RequireExplicitCheckOut rejects quotes that rely on the provisional
	// one-night check-out.
	RequireExplicitCheckOut bool

	// Today rejects a check-in before it. The zero value disables the check.
	Today civil.Date
}

// Quote is the price summary of a sheet.
type Quote struct {
	SuiteID             string     `json:"suiteId,omitempty"`
	CheckIn             civil.Date `json:"checkIn"`
	CheckOut            civil.Date `json:"checkOut"`
	CheckOutProvisional bool       `json:"checkOutProvisional"`
	Nights              int        `json:"nights"`
	PricePerNight       int64      `json:"pricePerNight"`
	Subtotal            int64      `json:"subtotal"`
	Problems            []Problem  `json:"problems"`
}

// CanContinue reports whether the quote may be submitted.
func (q Quote) CanContinue() bool {
	return len(q.Problems) == 0
}

// Calculate prices a selection. It is pure: identical inputs give identical quotes.
// Every failing condition is reported, not only the first.
func Calculate(suite *Suite, dates DateRange, guests Guests, opts QuoteOptions) Quote {
	q := Quote{
		CheckIn:             dates.CheckIn,
		CheckOut:            dates.EffectiveCheckOut(),
		CheckOutProvisional: dates.Provisional(),
		Nights:              dates.Nights(),
		Problems:            []Problem{},
	}
	if suite != nil {
		q.SuiteID = suite.ID
		q.PricePerNight = suite.PricePerNight
	}
	q.Subtotal = int64(q.Nights) * q.PricePerNight

	if suite == nil {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemSuiteMissing,
			Field:   "suite",
			Message: "select a suite",
		})
	}
	if q.Nights <= 0 {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemDatesInvalid,
			Field:   "dates",
			Message: "check-out must be after check-in",
		})
	}
	if opts.Today.IsValid() && dates.CheckIn.IsValid() && dates.CheckIn.Before(opts.Today) {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemCheckInPast,
			Field:   "checkIn",
			Message: "check-in cannot be in the past",
		})
	}
	if opts.RequireExplicitCheckOut && dates.Provisional() {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemCheckOutNotSelected,
			Field:   "checkOut",
			Message: "select a check-out date",
		})
	}
	if !guests.Valid() {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemGuestsInvalid,
			Field:   "guests.adults",
			Message: "at least one adult is required",
		})
	}
	// A missing suite already explains the missing price.
	if suite != nil && q.PricePerNight <= 0 {
		q.Problems = append(q.Problems, Problem{
			Code:    ProblemPriceUnavailable,
			Field:   "suite",
			Message: "this suite has no published price",
		})
	}

	return q
}
