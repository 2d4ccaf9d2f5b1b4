// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package notify provides the subscription registry that fans address change
// events out to per-field and wildcard subscribers.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/logger"
)

// Wildcard subscribes a callback to change events for every field.
const Wildcard = "*"

// Callback is invoked for every published change event a subscription matches.
type Callback func(event geocode.ChangeEvent)

// Token identifies a subscription for removal.
type Token string

type subscription struct {
	token    Token
	callback Callback
}

// Hub is the subscription registry. Dispatch per field follows subscription
// order, a failing callback never stops the remaining fan-out, and one change
// set always finishes dispatching before the next one starts.
type Hub struct {
	mu         sync.RWMutex
	dispatchMu sync.Mutex
	logger     *logger.Logger
	closed     bool
	subs       map[string][]subscription
}

// New initializes and returns a new Hub.
func New(log *logger.Logger) *Hub {
	return &Hub{
		logger: log,
		subs:   make(map[string][]subscription),
	}
}

// Subscribe registers a callback for change events of the given field name, or
// for all fields when field is the Wildcard. It returns a token for removal.
// Multiple subscribers per field are allowed and are dispatched in
// subscription order.
func (h *Hub) Subscribe(field string, callback Callback) Token {
	token := Token(uuid.NewString())
	h.mu.Lock()
	h.subs[field] = append(h.subs[field], subscription{token: token, callback: callback})
	h.mu.Unlock()
	return token
}

// Unsubscribe removes the subscription identified by token. Unsubscribing an
// unknown or already removed token is a no-op.
func (h *Hub) Unsubscribe(token Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for field, subs := range h.subs {
		for i, sub := range subs {
			if sub.token != token {
				continue
			}
			h.subs[field] = append(subs[:i:i], subs[i+1:]...)
			if len(h.subs[field]) == 0 {
				delete(h.subs, field)
			}
			return
		}
	}
}

// Publish dispatches a single change event to every matching subscriber.
// Dispatch is not reentrant: a callback must not publish from within its own
// invocation, or it deadlocks on the dispatch lock. Callbacks may subscribe
// and unsubscribe freely.
func (h *Hub) Publish(event geocode.ChangeEvent) {
	h.PublishBatch([]geocode.ChangeEvent{event})
}

// PublishBatch dispatches a set of change events in order. The whole batch
// runs to completion before another batch may begin dispatching, so two
// change sets never interleave for the same subscriber set. Like Publish,
// dispatch is not reentrant from within a callback.
func (h *Hub) PublishBatch(events []geocode.ChangeEvent) {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	for _, event := range events {
		for _, sub := range h.snapshot(event.Field) {
			h.dispatch(sub, event)
		}
	}
}

// Close stops all further dispatching. Published events after Close are
// silently dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// snapshot copies the matching subscriber list under the read lock, so a
// callback that subscribes or unsubscribes mid-dispatch cannot corrupt the
// iteration. Field subscribers come first, wildcard subscribers after, each
// group in subscription order.
func (h *Hub) snapshot(field string) []subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	subs := make([]subscription, 0, len(h.subs[field])+len(h.subs[Wildcard]))
	subs = append(subs, h.subs[field]...)
	if field != Wildcard {
		subs = append(subs, h.subs[Wildcard]...)
	}
	return subs
}

// dispatch invokes one callback, isolating panics so a failing subscriber
// neither stops the remaining callbacks nor propagates to the publisher.
func (h *Hub) dispatch(sub subscription, event geocode.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("notification subscriber failed",
				slog.String("field", event.Field), logger.Err(fmt.Errorf("callback panic: %v", r)))
		}
	}()
	sub.callback(event)
}
