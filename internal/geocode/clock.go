// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import "github.com/jonboulle/clockwork"

// clock is the package-level time source for change event timestamps, so
// tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for change detection. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
