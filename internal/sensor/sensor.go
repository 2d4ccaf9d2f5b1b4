// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package sensor defines the interface location sample sources implement and
// shared retry helpers for source implementations.
package sensor

import (
	"context"
	"time"

	"github.com/wneessen/geoguide/internal/geopos"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Source defines an interface for location sample feeds. A Source emits raw
// samples until the context is done; it owns its reconnect behavior.
type Source interface {
	Name() string
	Stream(ctx context.Context) <-chan geopos.RawSample
}

// SleepOrDone waits for the given duration or until the context is done.
// Returns false if the context ended first.
func SleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// NextBackoff doubles the given backoff duration, capped at maxBackoff.
func NextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}

// InitialBackoff returns the starting backoff duration for source reconnects.
func InitialBackoff() time.Duration {
	return initialBackoff
}
