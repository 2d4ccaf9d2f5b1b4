// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"strings"
	"time"
)

// ChangeEvent reports that one named address field differs between two
// consecutive address snapshots. Previous is empty when the field had no
// prior value.
type ChangeEvent struct {
	Field    string
	Previous string
	Current  string
	At       time.Time
}

// Compare diffs two address snapshots and returns one ChangeEvent per tracked
// field whose trim-normalized value differs. The events always appear in the
// fixed TrackedFields order, so downstream consumption stays deterministic.
// A nil previous snapshot yields one event per present field in current.
func Compare(previous *AddressRecord, current AddressRecord) []ChangeEvent {
	now := clock.Now()
	var events []ChangeEvent
	for _, field := range TrackedFields {
		currentValue := strings.TrimSpace(current.Field(field))
		if previous == nil {
			if currentValue == "" {
				continue
			}
			events = append(events, ChangeEvent{Field: field, Current: currentValue, At: now})
			continue
		}

		previousValue := strings.TrimSpace(previous.Field(field))
		if previousValue == currentValue {
			continue
		}
		events = append(events, ChangeEvent{
			Field:    field,
			Previous: previousValue,
			Current:  currentValue,
			At:       now,
		})
	}
	return events
}
