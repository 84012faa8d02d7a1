package booking

import (
	"fmt"
	"strings"
)

// GuestField names a counter on the guest picker.
type GuestField string

// Guest fields.
const (
	GuestAdults   GuestField = "adults"
	GuestChildren GuestField = "children"
)

// ParseGuestField parses a guest field name.
func ParseGuestField(s string) (GuestField, error) {
	switch f := GuestField(strings.ToLower(strings.TrimSpace(s))); f {
	case GuestAdults, GuestChildren:
		return f, nil
	default:
		return "", fmt.Errorf("unknown guest field %q", s)
	}
}

// Guests holds the party size.
type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// DefaultGuests is the party a new sheet starts with.
func DefaultGuests() Guests {
	return Guests{Adults: 2, Children: 0}
}

// Increment adds one guest to field.
func (g Guests) Increment(field GuestField) Guests {
	switch field {
	case GuestAdults:
		g.Adults++
	case GuestChildren:
		g.Children++
	}
	return g
}

// Decrement removes one guest from field, stopping at zero.
func (g Guests) Decrement(field GuestField) Guests {
	switch field {
	case GuestAdults:
		g.Adults = max(0, g.Adults-1)
	case GuestChildren:
		g.Children = max(0, g.Children-1)
	}
	return g
}

// Valid reports whether at least one adult is travelling.
func (g Guests) Valid() bool {
	return g.Adults >= 1
}
