// Package ratelimit provides sliding-window limiters keyed by an arbitrary
// string, used for review submission throttling.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more event for key fits in the current window.
// Implementations record the event when they return true.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config describes a sliding window: at most Limit events per Window.
type Config struct {
	Limit  int           `mapstructure:"limit" validate:"min=1"`
	Window time.Duration `mapstructure:"window" validate:"required"`
}
