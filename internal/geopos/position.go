// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geopos provides the location sample value types and the acceptance
// gate that decides which samples represent meaningful movement.
package geopos

import (
	"fmt"
	"math"
	"time"

	"github.com/wneessen/geoguide/internal/vartype"
)

// EarthRadius is the mean Earth radius in meters, used for great-circle distance calculation.
const EarthRadius = 6371000.0

// Quality is a discrete classification of a location sample's horizontal accuracy.
type Quality int

const (
	QualityVeryBad Quality = iota
	QualityBad
	QualityMedium
	QualityGood
	QualityExcellent
)

// Accuracy thresholds in meters for the quality tiers.
const (
	AccuracyExcellent = 10
	AccuracyGood      = 30
	AccuracyMedium    = 100
	AccuracyBad       = 200
)

// String returns the human-readable name of the quality tier.
func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityMedium:
		return "medium"
	case QualityBad:
		return "bad"
	default:
		return "very bad"
	}
}

// ClassifyAccuracy maps a horizontal accuracy value in meters to a Quality tier.
// A missing accuracy value classifies as QualityVeryBad, so samples from sensors
// that do not report accuracy are never trusted.
func ClassifyAccuracy(accuracy vartype.VarFloat64) Quality {
	if !accuracy.IsSet() {
		return QualityVeryBad
	}
	switch acc := accuracy.Value(); {
	case acc <= AccuracyExcellent:
		return QualityExcellent
	case acc <= AccuracyGood:
		return QualityGood
	case acc <= AccuracyMedium:
		return QualityMedium
	case acc <= AccuracyBad:
		return QualityBad
	default:
		return QualityVeryBad
	}
}

// RawSample represents one raw location sample as delivered by a sensor. All
// fields except Timestamp are optional, a sensor is free to omit anything it
// cannot measure.
type RawSample struct {
	Latitude         vartype.VarFloat64
	Longitude        vartype.VarFloat64
	AccuracyMeters   vartype.VarFloat64
	Altitude         vartype.VarFloat64
	AltitudeAccuracy vartype.VarFloat64
	Heading          vartype.VarFloat64
	SpeedMps         vartype.VarFloat64
	Timestamp        time.Time
}

// Position is an immutable location sample with its derived accuracy quality.
// Construction never fails; a sample without coordinates yields an invalid
// Position whose string form reports that no position data is available.
type Position struct {
	latitude  float64
	longitude float64
	valid     bool

	accuracy vartype.VarFloat64
	quality  Quality
	altitude vartype.VarFloat64
	heading  vartype.VarFloat64
	speed    vartype.VarFloat64
	at       time.Time
}

// New constructs a Position from a RawSample.
func New(sample RawSample) Position {
	return Position{
		latitude:  sample.Latitude.Value(),
		longitude: sample.Longitude.Value(),
		valid:     sample.Latitude.IsSet() && sample.Longitude.IsSet(),
		accuracy:  sample.AccuracyMeters,
		quality:   ClassifyAccuracy(sample.AccuracyMeters),
		altitude:  sample.Altitude,
		heading:   sample.Heading,
		speed:     sample.SpeedMps,
		at:        sample.Timestamp,
	}
}

// Valid returns true if the position carries coordinate data.
func (p Position) Valid() bool {
	return p.valid
}

// Latitude returns the latitude of the position in degrees.
func (p Position) Latitude() float64 {
	return p.latitude
}

// Longitude returns the longitude of the position in degrees.
func (p Position) Longitude() float64 {
	return p.longitude
}

// Accuracy returns the reported horizontal accuracy of the position in meters.
func (p Position) Accuracy() vartype.VarFloat64 {
	return p.accuracy
}

// Quality returns the accuracy quality tier derived from the reported accuracy.
func (p Position) Quality() Quality {
	return p.quality
}

// Altitude returns the altitude of the position in meters, if reported.
func (p Position) Altitude() vartype.VarFloat64 {
	return p.altitude
}

// Heading returns the heading of the position in degrees (0-360), if reported.
func (p Position) Heading() vartype.VarFloat64 {
	return p.heading
}

// Speed returns the speed of the position in meters per second, if reported.
func (p Position) Speed() vartype.VarFloat64 {
	return p.speed
}

// Timestamp returns the time the sample was taken. A zero time means the
// sensor did not provide one.
func (p Position) Timestamp() time.Time {
	return p.at
}

// DistanceTo calculates the great-circle distance in meters between two positions
// using the Haversine formula. The result is symmetric and zero for identical
// coordinates.
func (p Position) DistanceTo(other Position) float64 {
	dLat := (other.latitude - p.latitude) * math.Pi / 180
	dLon := (other.longitude - p.longitude) * math.Pi / 180
	lat1 := p.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// String returns a textual representation of the position.
func (p Position) String() string {
	if !p.valid {
		return "no position data"
	}
	return fmt.Sprintf("%.6f, %.6f (accuracy: %s)", p.latitude, p.longitude, p.quality)
}
