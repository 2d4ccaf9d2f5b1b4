// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geopos

import (
	"math"
	"testing"
	"time"

	"github.com/wneessen/geoguide/internal/vartype"
)

func sampleAt(lat, lon, acc float64, at time.Time) RawSample {
	return RawSample{
		Latitude:       vartype.NewVariable(lat),
		Longitude:      vartype.NewVariable(lon),
		AccuracyMeters: vartype.NewVariable(acc),
		Timestamp:      at,
	}
}

func TestClassifyAccuracy(t *testing.T) {
	t.Run("accuracy values map to the expected quality tiers", func(t *testing.T) {
		tests := []struct {
			name     string
			accuracy float64
			want     Quality
		}{
			{"zero meters", 0, QualityExcellent},
			{"exactly excellent threshold", 10, QualityExcellent},
			{"just above excellent threshold", 10.1, QualityGood},
			{"exactly good threshold", 30, QualityGood},
			{"between good and medium", 75, QualityMedium},
			{"exactly medium threshold", 100, QualityMedium},
			{"between medium and bad", 150, QualityBad},
			{"exactly bad threshold", 200, QualityBad},
			{"above bad threshold", 201, QualityVeryBad},
			{"very large accuracy", 1e6, QualityVeryBad},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got := ClassifyAccuracy(vartype.NewVariable(tc.accuracy))
				if got != tc.want {
					t.Errorf("expected quality %s, got %s", tc.want, got)
				}
			})
		}
	})
	t.Run("missing accuracy classifies as very bad", func(t *testing.T) {
		if got := ClassifyAccuracy(vartype.VarFloat64{}); got != QualityVeryBad {
			t.Errorf("expected quality %s, got %s", QualityVeryBad, got)
		}
	})
	t.Run("quality is monotonically non-increasing with accuracy", func(t *testing.T) {
		prev := QualityExcellent
		for acc := 0.0; acc <= 500; acc += 0.5 {
			q := ClassifyAccuracy(vartype.NewVariable(acc))
			if q > prev {
				t.Fatalf("quality increased from %s to %s at accuracy %.1f", prev, q, acc)
			}
			prev = q
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("sample without coordinates yields invalid position", func(t *testing.T) {
		pos := New(RawSample{Timestamp: time.Now()})
		if pos.Valid() {
			t.Error("expected position to be invalid")
		}
		if pos.String() != "no position data" {
			t.Errorf("expected string form to report missing data, got %q", pos.String())
		}
	})
	t.Run("sample with only latitude yields invalid position", func(t *testing.T) {
		pos := New(RawSample{Latitude: vartype.NewVariable(52.5), Timestamp: time.Now()})
		if pos.Valid() {
			t.Error("expected position to be invalid")
		}
	})
	t.Run("complete sample yields valid position with derived quality", func(t *testing.T) {
		now := time.Now()
		pos := New(sampleAt(-18.4696091, -43.4953982, 12, now))
		if !pos.Valid() {
			t.Fatal("expected position to be valid")
		}
		if pos.Latitude() != -18.4696091 || pos.Longitude() != -43.4953982 {
			t.Errorf("unexpected coordinates: %f, %f", pos.Latitude(), pos.Longitude())
		}
		if pos.Quality() != QualityGood {
			t.Errorf("expected quality %s, got %s", QualityGood, pos.Quality())
		}
		if !pos.Timestamp().Equal(now) {
			t.Errorf("expected timestamp %s, got %s", now, pos.Timestamp())
		}
	})
	t.Run("optional fields report as not present when unset", func(t *testing.T) {
		pos := New(sampleAt(1, 1, 5, time.Now()))
		if pos.Altitude().IsSet() || pos.Heading().IsSet() || pos.Speed().IsSet() {
			t.Error("expected optional fields to be unset")
		}
		if pos.Altitude().String() != "not present" {
			t.Errorf("expected altitude string to be 'not present', got %q", pos.Altitude().String())
		}
	})
}

func TestPosition_DistanceTo(t *testing.T) {
	t.Run("distance to itself is zero", func(t *testing.T) {
		pos := New(sampleAt(-23.5505, -46.6333, 10, time.Now()))
		if dist := pos.DistanceTo(pos); dist != 0 {
			t.Errorf("expected zero distance, got %f", dist)
		}
	})
	t.Run("distance is symmetric", func(t *testing.T) {
		a := New(sampleAt(-23.5505, -46.6333, 10, time.Now()))
		b := New(sampleAt(-19.9167, -43.9345, 10, time.Now()))
		if ab, ba := a.DistanceTo(b), b.DistanceTo(a); math.Abs(ab-ba) > 1e-9 {
			t.Errorf("expected symmetric distance, got %f and %f", ab, ba)
		}
	})
	t.Run("known distances are within tolerance", func(t *testing.T) {
		tests := []struct {
			name       string
			lat1, lon1 float64
			lat2, lon2 float64
			want       float64
			tolerance  float64
		}{
			{"a few blocks in Sao Paulo", -23.5505, -46.6333, -23.5510, -46.6300, 341, 2},
			{"Sao Paulo to Belo Horizonte", -23.5505, -46.6333, -19.9167, -43.9345, 490850, 100},
			{"one degree of latitude", 0, 0, 1, 0, 111195, 10},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				a := New(sampleAt(tc.lat1, tc.lon1, 10, time.Now()))
				b := New(sampleAt(tc.lat2, tc.lon2, 10, time.Now()))
				if dist := a.DistanceTo(b); math.Abs(dist-tc.want) > tc.tolerance {
					t.Errorf("expected distance around %.0fm, got %.0fm", tc.want, dist)
				}
			})
		}
	})
}
