package navigation

import (
	"time"

	"github.com/roomy/roomy/internal/geo"
)

// CameraMode is how the camera frames its target.
type CameraMode string

const (
	CameraFitBounds CameraMode = "fit_bounds"
	CameraCenter    CameraMode = "center"
)

// Camera is a camera command for the map renderer.
type Camera struct {
	Mode        CameraMode       `json:"mode"`
	Bounds      *geo.BoundingBox `json:"bounds,omitempty"`
	Center      *geo.Coordinate  `json:"center,omitempty"`
	Zoom        float64          `json:"zoom,omitempty"`
	PaddingPx   int              `json:"paddingPx,omitempty"`
	AnimationMs int64            `json:"animationMs"`
}

// FitBounds frames a bounding box.
func FitBounds(box geo.BoundingBox, paddingPx int, animation time.Duration) Camera {
	return Camera{
		Mode:        CameraFitBounds,
		Bounds:      &box,
		PaddingPx:   paddingPx,
		AnimationMs: animation.Milliseconds(),
	}
}

// CenterOn centers on a point at a fixed zoom.
func CenterOn(c geo.Coordinate, zoom float64, animation time.Duration) Camera {
	return Camera{
		Mode:        CameraCenter,
		Center:      &c,
		Zoom:        zoom,
		AnimationMs: animation.Milliseconds(),
	}
}
