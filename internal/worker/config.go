// Package worker stores booking drafts published by the API.
package worker

import (
	"time"
)

// ReceiveConfig tunes the Pub/Sub subscriber.
type ReceiveConfig struct {
	// MaxOutstandingMessages bounds drafts being stored at once.
	// Default: 10
	MaxOutstandingMessages int

	// MaxExtension is how long a message may be held before Pub/Sub redelivers it.
	// Default: 10 minutes
	MaxExtension time.Duration

	// HandleTimeout bounds storing a single draft.
	// Default: 30 seconds
	HandleTimeout time.Duration
}

// DefaultReceiveConfig returns the default subscriber configuration.
func DefaultReceiveConfig() ReceiveConfig {
	return ReceiveConfig{
		MaxOutstandingMessages: 10,
		MaxExtension:           10 * time.Minute,
		HandleTimeout:          30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultReceiveConfig.
func (c ReceiveConfig) withDefaults() ReceiveConfig {
	d := DefaultReceiveConfig()
	if c.MaxOutstandingMessages <= 0 {
		c.MaxOutstandingMessages = d.MaxOutstandingMessages
	}
	if c.MaxExtension <= 0 {
		c.MaxExtension = d.MaxExtension
	}
	if c.HandleTimeout <= 0 {
		c.HandleTimeout = d.HandleTimeout
	}
	return c
}
