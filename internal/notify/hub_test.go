// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/logger"
)

func testHub() *Hub {
	return New(logger.NewLogger(slog.LevelError, bytes.NewBuffer(nil)))
}

func streetEvent(value string) geocode.ChangeEvent {
	return geocode.ChangeEvent{Field: geocode.FieldStreet, Current: value}
}

func TestHub_Subscribe(t *testing.T) {
	t.Run("subscribers receive events for their field", func(t *testing.T) {
		hub := testHub()
		var got []string
		hub.Subscribe(geocode.FieldStreet, func(event geocode.ChangeEvent) {
			got = append(got, event.Current)
		})
		hub.Publish(streetEvent("Rua Direita"))
		if len(got) != 1 || got[0] != "Rua Direita" {
			t.Errorf("expected one event for 'Rua Direita', got %v", got)
		}
	})
	t.Run("subscribers do not receive events for other fields", func(t *testing.T) {
		hub := testHub()
		called := false
		hub.Subscribe(geocode.FieldMunicipality, func(geocode.ChangeEvent) { called = true })
		hub.Publish(streetEvent("Rua Direita"))
		if called {
			t.Error("expected municipality subscriber to not be invoked")
		}
	})
	t.Run("wildcard subscribers receive every event", func(t *testing.T) {
		hub := testHub()
		var got []string
		hub.Subscribe(Wildcard, func(event geocode.ChangeEvent) {
			got = append(got, event.Field)
		})
		hub.Publish(streetEvent("Rua Direita"))
		hub.Publish(geocode.ChangeEvent{Field: geocode.FieldMunicipality, Current: "Serro"})
		if len(got) != 2 {
			t.Fatalf("expected two events, got %d", len(got))
		}
		if got[0] != geocode.FieldStreet || got[1] != geocode.FieldMunicipality {
			t.Errorf("expected street and municipality events, got %v", got)
		}
	})
	t.Run("multiple subscribers are dispatched in subscription order", func(t *testing.T) {
		hub := testHub()
		var order []int
		for i := range 5 {
			hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {
				order = append(order, i)
			})
		}
		hub.Publish(streetEvent("Rua Direita"))
		for i, pos := range order {
			if pos != i {
				t.Fatalf("expected dispatch order to follow subscription order, got %v", order)
			}
		}
	})
	t.Run("field subscribers are dispatched before wildcard subscribers", func(t *testing.T) {
		hub := testHub()
		var order []string
		hub.Subscribe(Wildcard, func(geocode.ChangeEvent) { order = append(order, "wildcard") })
		hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) { order = append(order, "field") })
		hub.Publish(streetEvent("Rua Direita"))
		if len(order) != 2 || order[0] != "field" || order[1] != "wildcard" {
			t.Errorf("expected field subscriber first, got %v", order)
		}
	})
}

func TestHub_Unsubscribe(t *testing.T) {
	t.Run("unsubscribed callbacks are no longer invoked", func(t *testing.T) {
		hub := testHub()
		called := false
		token := hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) { called = true })
		hub.Unsubscribe(token)
		hub.Publish(streetEvent("Rua Direita"))
		if called {
			t.Error("expected unsubscribed callback to not be invoked")
		}
	})
	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		hub := testHub()
		token := hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {})
		hub.Unsubscribe(token)
		hub.Unsubscribe(token)
		hub.Unsubscribe(Token("unknown"))
	})
	t.Run("unsubscribing one callback keeps the others", func(t *testing.T) {
		hub := testHub()
		var got []string
		first := hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) { got = append(got, "first") })
		hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) { got = append(got, "second") })
		hub.Unsubscribe(first)
		hub.Publish(streetEvent("Rua Direita"))
		if len(got) != 1 || got[0] != "second" {
			t.Errorf("expected only the second subscriber to fire, got %v", got)
		}
	})
}

func TestHub_Publish(t *testing.T) {
	t.Run("a panicking callback does not stop the fan-out", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		hub := New(logger.NewLogger(slog.LevelError, buf))
		var got []string
		hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {
			panic("intentionally failing")
		})
		hub.Subscribe(geocode.FieldStreet, func(event geocode.ChangeEvent) {
			got = append(got, event.Current)
		})
		hub.Publish(streetEvent("Rua Direita"))
		if len(got) != 1 {
			t.Fatalf("expected the second subscriber to still fire, got %d invocations", len(got))
		}
		if !bytes.Contains(buf.Bytes(), []byte("notification subscriber failed")) {
			t.Error("expected the subscriber failure to be logged")
		}
	})
	t.Run("a callback subscribing during dispatch does not corrupt the fan-out", func(t *testing.T) {
		hub := testHub()
		var got []string
		hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {
			got = append(got, "outer")
			hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {
				got = append(got, "inner")
			})
		})
		hub.Publish(streetEvent("Rua Direita"))
		if len(got) != 1 || got[0] != "outer" {
			t.Errorf("expected only the outer subscriber for the first publish, got %v", got)
		}
		hub.Publish(streetEvent("Travessa da Matriz"))
		if len(got) != 3 {
			t.Errorf("expected outer, outer and inner invocations after the second publish, got %v", got)
		}
	})
	t.Run("a callback unsubscribing itself during dispatch is safe", func(t *testing.T) {
		hub := testHub()
		count := 0
		var token Token
		token = hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) {
			count++
			hub.Unsubscribe(token)
		})
		hub.Publish(streetEvent("Rua Direita"))
		hub.Publish(streetEvent("Travessa da Matriz"))
		if count != 1 {
			t.Errorf("expected exactly one invocation, got %d", count)
		}
	})
	t.Run("batched events dispatch in order", func(t *testing.T) {
		hub := testHub()
		var got []string
		hub.Subscribe(Wildcard, func(event geocode.ChangeEvent) {
			got = append(got, event.Field)
		})
		hub.PublishBatch([]geocode.ChangeEvent{
			{Field: geocode.FieldStreet, Current: "Rua Direita"},
			{Field: geocode.FieldMunicipality, Current: "Serro"},
			{Field: geocode.FieldStateAbbreviation, Current: "MG"},
		})
		want := []string{geocode.FieldStreet, geocode.FieldMunicipality, geocode.FieldStateAbbreviation}
		if len(got) != len(want) {
			t.Fatalf("expected %d events, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("expected event %d to be %q, got %q", i, want[i], got[i])
			}
		}
	})
	t.Run("no events are dispatched after close", func(t *testing.T) {
		hub := testHub()
		called := false
		hub.Subscribe(geocode.FieldStreet, func(geocode.ChangeEvent) { called = true })
		hub.Close()
		hub.Publish(streetEvent("Rua Direita"))
		if called {
			t.Error("expected no dispatch after close")
		}
	})
}
