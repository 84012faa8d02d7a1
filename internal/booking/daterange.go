package booking

import "cloud.google.com/go/civil"

// DateRange is the calendar selection. CheckOut is nil until a second day after
// CheckIn is pressed.
type DateRange struct {
	CheckIn  civil.Date
	CheckOut *civil.Date
}

// NewDateRange starts a selection anchored on today.
func NewDateRange(today civil.Date) DateRange {
	return DateRange{CheckIn: today}
}

// Complete reports whether both ends have been picked.
func (r DateRange) Complete() bool {
	return r.CheckIn.IsValid() && r.CheckOut != nil
}

// PressDay applies a calendar press and returns the new range.
//
// A press on a complete range starts a new one. With only an anchor, a day on or
// before the anchor moves it and a later day completes the range.
func (r DateRange) PressDay(day civil.Date) DateRange {
	switch {
	case r.Complete(), !r.CheckIn.IsValid():
		return DateRange{CheckIn: day}
	case !day.After(r.CheckIn):
		return DateRange{CheckIn: day}
	default:
		return DateRange{CheckIn: r.CheckIn, CheckOut: &day}
	}
}

// EffectiveCheckOut is the picked check-out, or the day after check-in while
// none has been picked. The range itself is not changed.
func (r DateRange) EffectiveCheckOut() civil.Date {
	if r.CheckOut != nil {
		return *r.CheckOut
	}
	return r.CheckIn.AddDays(1)
}

// Provisional reports whether EffectiveCheckOut is the +1 day fallback.
func (r DateRange) Provisional() bool {
	return r.CheckOut == nil
}

// Nights is the number of whole nights in the effective range, never negative.
func (r DateRange) Nights() int {
	if !r.CheckIn.IsValid() {
		return 0
	}
	n := r.EffectiveCheckOut().DaysSince(r.CheckIn)
	if n < 0 {
		return 0
	}
	return n
}
