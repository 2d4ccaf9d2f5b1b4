// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geopos

import (
	"sync"
	"time"
)

// Policy selects which accuracy quality tiers a device profile accepts.
// Mobile devices report GPS-grade accuracy, so anything worse than
// QualityGood is discarded. Desktop devices usually only have network-based
// positioning available and therefore tolerate QualityMedium.
type Policy int

const (
	PolicyMobile Policy = iota
	PolicyDesktop
)

// Allows returns true if the given quality tier is acceptable under the policy.
func (p Policy) Allows(quality Quality) bool {
	switch p {
	case PolicyMobile:
		return quality >= QualityGood
	default:
		return quality >= QualityMedium
	}
}

// String returns the name of the policy.
func (p Policy) String() string {
	if p == PolicyMobile {
		return "mobile"
	}
	return "desktop"
}

// Outcome is the result of validating a single location sample.
type Outcome int

const (
	// AcceptedImmediate marks a sample that should trigger the downstream
	// pipeline right away: either the first sample ever seen, or fast
	// movement that covered the distance threshold before the time
	// threshold elapsed.
	AcceptedImmediate Outcome = iota
	// AcceptedRegular marks a sample that met both the distance and the
	// time threshold and can be processed at the normal cadence.
	AcceptedRegular
	// RejectedInvalidSample marks a sample without coordinates or timestamp.
	RejectedInvalidSample
	// RejectedPoorAccuracy marks a sample whose accuracy tier the device
	// policy disallows.
	RejectedPoorAccuracy
	// RejectedInsufficientChange marks a sample too close in both distance
	// and time to the last accepted position.
	RejectedInsufficientChange
)

// Accepted returns true if the outcome represents an accepted sample.
func (o Outcome) Accepted() bool {
	return o == AcceptedImmediate || o == AcceptedRegular
}

// String returns the name of the outcome.
func (o Outcome) String() string {
	switch o {
	case AcceptedImmediate:
		return "accepted (immediate)"
	case AcceptedRegular:
		return "accepted (regular)"
	case RejectedInvalidSample:
		return "rejected (invalid sample)"
	case RejectedPoorAccuracy:
		return "rejected (poor accuracy)"
	case RejectedInsufficientChange:
		return "rejected (insufficient change)"
	default:
		return "unknown"
	}
}

// Validator is the stateful acceptance gate for location samples. It holds the
// last accepted position and applies accuracy, distance and time thresholds to
// every new sample. Validate never returns an error: malformed input yields a
// rejection outcome, so a sampling loop is never disrupted.
type Validator struct {
	mu            sync.Mutex
	minDistance   float64
	minTimeChange time.Duration
	policy        Policy

	last     Position
	haveLast bool
}

// NewValidator returns a Validator with the given distance threshold in meters,
// time threshold and device accuracy policy.
func NewValidator(minDistanceMeters float64, minTimeChange time.Duration, policy Policy) *Validator {
	return &Validator{
		minDistance:   minDistanceMeters,
		minTimeChange: minTimeChange,
		policy:        policy,
	}
}

// Validate applies the acceptance rules to a raw sample and returns the
// constructed Position together with the validation outcome. The last accepted
// position is only replaced on acceptance; the read-compare-write sequence is
// guarded so no two validations interleave.
func (v *Validator) Validate(sample RawSample) (Position, Outcome) {
	position := New(sample)
	if !position.Valid() || position.Timestamp().IsZero() {
		return position, RejectedInvalidSample
	}
	if !v.policy.Allows(position.Quality()) {
		return position, RejectedPoorAccuracy
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.haveLast {
		v.last = position
		v.haveLast = true
		return position, AcceptedImmediate
	}

	distance := v.last.DistanceTo(position)
	elapsed := position.Timestamp().Sub(v.last.Timestamp())

	// Out-of-order samples must not replace a newer accepted position
	if elapsed < 0 {
		return position, RejectedInvalidSample
	}
	if distance < v.minDistance {
		return position, RejectedInsufficientChange
	}
	if elapsed < v.minTimeChange {
		// Fast movement: the distance threshold was covered before the
		// time threshold elapsed, signal the caller to expedite.
		v.last = position
		return position, AcceptedImmediate
	}

	v.last = position
	return position, AcceptedRegular
}

// LastAccepted returns the last accepted position and whether one exists.
func (v *Validator) LastAccepted() (Position, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last, v.haveLast
}

// Reset clears the validator state, so the next valid sample is accepted
// unconditionally again.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = Position{}
	v.haveLast = false
}
