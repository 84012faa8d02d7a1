package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Limits on free-text extras.
const (
	MaxPromoCodeLength = 32
	MaxNotesLength     = 500
)

// ProceedHandler receives drafts the user confirmed.
type ProceedHandler interface {
	HandleDraft(ctx context.Context, draft Draft) error
}

// ProceedFunc adapts a function to ProceedHandler.
type ProceedFunc func(ctx context.Context, draft Draft) error

// HandleDraft calls f.
func (f ProceedFunc) HandleDraft(ctx context.Context, draft Draft) error {
	return f(ctx, draft)
}

// SheetOptions describes the property a sheet books.
type SheetOptions struct {
	HotelID   string
	HotelName string
	Suites    []Suite

	// SelectedSuiteID preselects a suite; empty selects the first one.
	SelectedSuiteID string
}

// SheetView is an immutable copy of a sheet's state with its quote.
type SheetView struct {
	ID          string      `json:"id"`
	HotelID     string      `json:"hotelId"`
	HotelName   string      `json:"hotelName"`
	Suites      []Suite     `json:"suites"`
	SuiteID     string      `json:"suiteId,omitempty"`
	CheckIn     civil.Date  `json:"checkIn"`
	CheckOut    *civil.Date `json:"checkOut,omitempty"`
	Guests      Guests      `json:"guests"`
	PromoCode   string      `json:"promoCode,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Currency    string      `json:"currency"`
	Quote       Quote       `json:"quote"`
	LastDraftID string      `json:"lastDraftId,omitempty"`
}

type sheetDeps struct {
	handler  ProceedHandler
	opts     QuoteOptions
	currency string
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// Sheet is one open booking sheet. It is safe for concurrent use.
type Sheet struct {
	ID        string
	UserID    string
	HotelID   string
	HotelName string
	CreatedAt time.Time

	suites []Suite
	deps   sheetDeps
	logger zerolog.Logger

	mu          sync.Mutex
	suiteID     string
	dates       DateRange
	guests      Guests
	promoCode   string
	notes       string
	lastDraftID string
	lastSeen    time.Time
}

func newSheet(userID string, opts SheetOptions, deps sheetDeps) (*Sheet, error) {
	suites := append([]Suite(nil), opts.Suites...)

	suiteID := opts.SelectedSuiteID
	if suiteID != "" {
		if findSuite(suites, suiteID) == nil {
			return nil, fmt.Errorf("%w: %s", ErrSuiteNotFound, suiteID)
		}
	} else if len(suites) > 0 {
		suiteID = suites[0].ID
	}

	now := deps.now()
	id := "bks_" + uuid.New().String()

	return &Sheet{
		ID:        id,
		UserID:    userID,
		HotelID:   opts.HotelID,
		HotelName: opts.HotelName,
		CreatedAt: now,
		suites:    suites,
		deps:      deps,
		logger:    deps.logger.With().Str("sheet_id", id).Str("hotel_id", opts.HotelID).Logger(),
		suiteID:   suiteID,
		dates:     NewDateRange(civil.DateOf(now.In(deps.loc))),
		guests:    DefaultGuests(),
		lastSeen:  now,
	}, nil
}

func findSuite(suites []Suite, id string) *Suite {
	for i := range suites {
		if suites[i].ID == id {
			s := suites[i]
			return &s
		}
	}
	return nil
}

func (s *Sheet) today() civil.Date {
	return civil.DateOf(s.deps.now().In(s.deps.loc))
}

// SelectSuite makes id the current suite.
func (s *Sheet) SelectSuite(id string) error {
	if findSuite(s.suites, id) == nil {
		return fmt.Errorf("%w: %s", ErrSuiteNotFound, id)
	}
	s.mu.Lock()
	s.suiteID = id
	s.mu.Unlock()
	return nil
}

// PressDay applies a calendar press. Days before today cannot be picked.
func (s *Sheet) PressDay(day civil.Date) error {
	if !day.IsValid() {
		return fmt.Errorf("invalid date %s", day)
	}
	today := s.today()
	if day.Before(today) {
		return ErrDayInPast
	}
	s.mu.Lock()
	s.rollDatesLocked(today)
	s.dates = s.dates.PressDay(day)
	s.mu.Unlock()
	return nil
}

// IncrementGuests adds one guest to field.
func (s *Sheet) IncrementGuests(field GuestField) {
	s.mu.Lock()
	s.guests = s.guests.Increment(field)
	s.mu.Unlock()
}

// DecrementGuests removes one guest from field, stopping at zero.
func (s *Sheet) DecrementGuests(field GuestField) {
	s.mu.Lock()
	s.guests = s.guests.Decrement(field)
	s.mu.Unlock()
}

// SetExtras updates the promo code and notes. Nil leaves a field unchanged.
// Values are stored as typed and trimmed when a draft is built.
func (s *Sheet) SetExtras(promoCode, notes *string) error {
	var problems []Problem
	if promoCode != nil && utf8.RuneCountInString(strings.TrimSpace(*promoCode)) > MaxPromoCodeLength {
		problems = append(problems, Problem{
			Code:    ProblemPromoCodeTooLong,
			Field:   "promoCode",
			Message: fmt.Sprintf("must be at most %d characters", MaxPromoCodeLength),
		})
	}
	if notes != nil && utf8.RuneCountInString(strings.TrimSpace(*notes)) > MaxNotesLength {
		problems = append(problems, Problem{
			Code:    ProblemNotesTooLong,
			Field:   "notes",
			Message: fmt.Sprintf("must be at most %d characters", MaxNotesLength),
		})
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if promoCode != nil {
		s.promoCode = *promoCode
	}
	if notes != nil {
		s.notes = *notes
	}
	return nil
}

// Quote prices the current selection.
func (s *Sheet) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quoteLocked()
}

func (s *Sheet) quoteLocked() Quote {
	today := s.today()
	s.rollDatesLocked(today)

	opts := s.deps.opts
	opts.Today = today
	return Calculate(findSuite(s.suites, s.suiteID), s.dates, s.guests, opts)
}

// rollDatesLocked moves a check-in that is still waiting for its check-out up
// to today once the day it was picked on has passed. A complete range is kept
// and the quote reports it.
func (s *Sheet) rollDatesLocked(today civil.Date) {
	if s.dates.CheckOut == nil && s.dates.CheckIn.Before(today) {
		s.dates = NewDateRange(today)
	}
}

// View returns a copy of the sheet state.
func (s *Sheet) View() SheetView {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote := s.quoteLocked()
	v := SheetView{
		ID:          s.ID,
		HotelID:     s.HotelID,
		HotelName:   s.HotelName,
		Suites:      append([]Suite{}, s.suites...),
		SuiteID:     s.suiteID,
		CheckIn:     s.dates.CheckIn,
		Guests:      s.guests,
		PromoCode:   s.promoCode,
		Notes:       s.notes,
		Currency:    s.deps.currency,
		Quote:       quote,
		LastDraftID: s.lastDraftID,
	}
	if s.dates.CheckOut != nil {
		out := *s.dates.CheckOut
		v.CheckOut = &out
	}
	return v
}

// Proceed builds a draft from the current selection and hands it to the proceed
// handler. A selection with problems returns *ValidationError and nothing is sent.
func (s *Sheet) Proceed(ctx context.Context) (*Draft, error) {
	s.mu.Lock()
	q := s.quoteLocked()
	if !q.CanContinue() {
		s.mu.Unlock()
		return nil, &ValidationError{Problems: q.Problems}
	}

	draft := Draft{
		ID:                  "bkr_" + uuid.New().String(),
		SheetID:             s.ID,
		UserID:              s.UserID,
		HotelID:             s.HotelID,
		HotelName:           s.HotelName,
		Suite:               *findSuite(s.suites, s.suiteID),
		CheckIn:             q.CheckIn,
		CheckOut:            q.CheckOut,
		CheckOutProvisional: q.CheckOutProvisional,
		Nights:              q.Nights,
		Guests:              s.guests,
		PricePerNight:       q.PricePerNight,
		Subtotal:            q.Subtotal,
		Currency:            s.deps.currency,
		PromoCode:           strings.TrimSpace(s.promoCode),
		Notes:               strings.TrimSpace(s.notes),
		CreatedAt:           s.deps.now().UTC(),
	}
	s.mu.Unlock()

	if err := s.deps.handler.HandleDraft(ctx, draft); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.ID).Msg("proceed handler failed")
		return nil, fmt.Errorf("handing off booking draft: %w", err)
	}

	s.mu.Lock()
	s.lastDraftID = draft.ID
	s.mu.Unlock()

	s.logger.Info().
		Str("draft_id", draft.ID).
		Str("suite_id", draft.Suite.ID).
		Int("nights", draft.Nights).
		Int64("subtotal", draft.Subtotal).
		Bool("provisional_checkout", draft.CheckOutProvisional).
		Msg("booking draft submitted")

	return &draft, nil
}

func (s *Sheet) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Sheet) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
