package location

import (
	"context"
	"sync"

	"github.com/roomy/roomy/internal/geo"
)

// PushService is a Service whose positions are pushed in from outside, typically by
// the mobile client over HTTP. Only the newest pending position is kept.
type PushService struct {
	mu         sync.Mutex
	permission Permission
	fixes      chan geo.Coordinate
}

// NewPushService creates a PushService reporting the given permission.
func NewPushService(permission Permission) *PushService {
	return &PushService{
		permission: permission,
		fixes:      make(chan geo.Coordinate, 1),
	}
}

// RequestPermission returns the permission reported by the client.
func (p *PushService) RequestPermission(_ context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission, nil
}

// SetPermission updates the reported permission, e.g. after the user changes settings.
func (p *PushService) SetPermission(permission Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = permission
}

// Watch returns the pushed position stream. The caller stops reading when ctx ends.
func (p *PushService) Watch(_ context.Context, _ WatchOptions) (<-chan geo.Coordinate, error) {
	return p.fixes, nil
}

// Push offers a new position. An unread older position is replaced.
func (p *PushService) Push(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case p.fixes <- c:
		return nil
	default:
	}

	// Buffer full: drop the stale fix and retry once.
	select {
	case <-p.fixes:
	default:
	}
	select {
	case p.fixes <- c:
	default:
	}
	return nil
}

// Pending reports whether a pushed position has not been read yet.
func (p *PushService) Pending() bool {
	return len(p.fixes) > 0
}
