// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"math"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/geoguide/internal/geopos"
	"github.com/wneessen/geoguide/internal/logger"
	"github.com/wneessen/geoguide/internal/vartype"
)

const (
	name        = "gpsd"
	defaultHost = "localhost"
	defaultPort = "2947"

	reconnectDelay = time.Second * 30

	// Fallback horizontal accuracy when gpsd reports no error estimates.
	fallbackAccuracy3DFix = 10
	fallbackAccuracy2DFix = 25
)

// Source streams location samples from a local gpsd daemon.
type Source struct {
	name   string
	addr   string
	logger *logger.Logger
}

// New returns a gpsd-backed sample source connecting to the default gpsd
// address.
func New(log *logger.Logger) *Source {
	return &Source{
		name:   name,
		addr:   net.JoinHostPort(defaultHost, defaultPort),
		logger: log,
	}
}

// Name returns the name of the source.
func (s *Source) Name() string {
	return s.name
}

// Stream connects to gpsd and emits one raw sample per TPV report with at
// least a 2D fix, reconnecting with a delay when the connection ends.
func (s *Source) Stream(ctx context.Context) <-chan geopos.RawSample {
	out := make(chan geopos.RawSample)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			session, err := gpsd.Dial(s.addr)
			if err != nil {
				s.logger.Debug("failed to connect to gpsd, retrying", logger.Err(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(reconnectDelay):
					continue
				}
			}

			session.AddFilter("TPV", func(r interface{}) {
				tpv, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}
				if tpv.Mode < gpsd.Mode2D {
					return
				}

				select {
				case <-ctx.Done():
				case out <- sampleFromTPV(tpv):
				}
			})

			done := session.Watch()
			select {
			case <-ctx.Done():
				return
			case <-done:
				// gpsd connection ended, reconnect after a short delay
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()

	return out
}

// sampleFromTPV maps a gpsd TPV report to a raw location sample.
func sampleFromTPV(tpv *gpsd.TPVReport) geopos.RawSample {
	sample := geopos.RawSample{
		Latitude:       vartype.NewVariable(tpv.Lat),
		Longitude:      vartype.NewVariable(tpv.Lon),
		AccuracyMeters: vartype.NewVariable(horizontalAccuracyMeters(tpv)),
		Timestamp:      tpv.Time,
	}
	if tpv.Mode >= gpsd.Mode3D {
		sample.Altitude = vartype.NewVariable(tpv.Alt)
		if tpv.Epv > 0 {
			sample.AltitudeAccuracy = vartype.NewVariable(tpv.Epv)
		}
	}
	if tpv.Track > 0 {
		sample.Heading = vartype.NewVariable(tpv.Track)
	}
	if tpv.Speed > 0 {
		sample.SpeedMps = vartype.NewVariable(tpv.Speed)
	}
	return sample
}

// horizontalAccuracyMeters derives a horizontal accuracy estimate from the
// error values gpsd reports, falling back to fix-mode defaults.
func horizontalAccuracyMeters(tpv *gpsd.TPVReport) float64 {
	switch {
	case tpv.Epx > 0 && tpv.Epy > 0:
		return math.Hypot(tpv.Epx, tpv.Epy)
	case tpv.Mode >= gpsd.Mode3D:
		return fallbackAccuracy3DFix
	default:
		return fallbackAccuracy2DFix
	}
}
