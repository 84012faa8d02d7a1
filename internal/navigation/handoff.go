package navigation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/roomy/roomy/internal/geo"
)

// Platform is the client operating system.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// ParsePlatform normalizes a client-reported platform; unknown values map to web.
func ParsePlatform(s string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformIOS:
		return PlatformIOS
	case PlatformAndroid:
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// DirectionsLink builds a URL that opens turn-by-turn directions to c in the
// platform's native maps app: Apple Maps on iOS, Google Maps everywhere else.
func DirectionsLink(platform Platform, c geo.Coordinate, label string) string {
	dest := fmt.Sprintf("%g,%g", c.Lat, c.Lon)

	if platform == PlatformIOS {
		q := url.Values{}
		q.Set("daddr", dest)
		if label != "" {
			q.Set("q", label)
		}
		return "http://maps.apple.com/?" + q.Encode()
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", dest)
	return "https://www.google.com/maps/dir/?" + q.Encode()
}
