// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/geopos"
	"github.com/wneessen/geoguide/internal/logger"
	"github.com/wneessen/geoguide/internal/sensor"
)

const GeocodeTimeout = time.Second * 10

// forwardSamples drains one sensor source into the shared sample stream
// until the context is cancelled.
func (s *Service) forwardSamples(ctx context.Context, src sensor.Source, out chan<- geopos.RawSample) {
	stream := src.Stream(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-stream:
			if !ok {
				return
			}
			s.logger.Debug("received position sample", slog.String("source", src.Name()),
				slog.Float64("lat", sample.Latitude.Value()), slog.Float64("lon", sample.Longitude.Value()))
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processSamples is the single consumer of the merged sample stream. All
// validator and cache writes happen from this goroutine; only the geocode
// call escapes into its own goroutine.
func (s *Service) processSamples(ctx context.Context, samples <-chan geopos.RawSample) {
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-samples:
			if !ok {
				return
			}
			s.handleSample(ctx, sample)
		}
	}
}

// handleSample runs one pipeline cycle: validate the sample and, when it is
// accepted, resolve its address asynchronously.
func (s *Service) handleSample(ctx context.Context, sample geopos.RawSample) {
	position, outcome := s.validator.Validate(sample)
	s.metrics.SamplesValidated.WithLabelValues(outcome.String()).Inc()
	if !outcome.Accepted() {
		s.logger.Debug("position sample rejected", slog.String("outcome", outcome.String()))
		return
	}

	s.stateLock.Lock()
	s.position = position
	s.geocodeSeq++
	seq := s.geocodeSeq
	s.stateLock.Unlock()

	s.logger.Debug("position sample accepted", slog.String("outcome", outcome.String()),
		slog.String("position", position.String()))

	go s.resolveAddress(ctx, position, seq, outcome == geopos.AcceptedImmediate)
}

// resolveAddress reverse geocodes an accepted position and applies the result
// to the cache and notification hub. A result that arrives after a newer
// sample has been accepted is discarded as stale.
func (s *Service) resolveAddress(ctx context.Context, position geopos.Position, seq uint64, immediate bool) {
	address, err := s.lookupAddress(ctx, position)
	if err != nil {
		// Keep the last known good address and degrade to raw
		// coordinate display. The cache stays untouched.
		s.metrics.GeocodeRequests.WithLabelValues("failure").Inc()
		s.logger.Error("failed to reverse geocode position", logger.Err(err),
			slog.String("position", position.String()))
		// The raw coordinate display still updates without waiting
		// for the output cadence.
		if immediate {
			s.runJobsNow()
		}
		return
	}

	s.stateLock.Lock()
	if seq != s.geocodeSeq {
		s.stateLock.Unlock()
		s.metrics.GeocodeRequests.WithLabelValues("stale").Inc()
		s.logger.Debug("discarding stale geocode result", slog.Uint64("seq", seq))
		return
	}
	s.metrics.GeocodeRequests.WithLabelValues("success").Inc()

	previous, hadPrevious := s.cache.Set(CurrentAddressKey, address)
	s.cache.Set(coordinateKey(position), address)
	s.address = address
	s.addressIsSet = true
	s.stateLock.Unlock()

	// An expedited sample reschedules the cadence jobs even when the
	// resolved address turns out unchanged, so fast movement within the
	// same street still updates the display right away.
	if immediate {
		s.runJobsNow()
	}

	var prior *geocode.AddressRecord
	if hadPrevious {
		prior = &previous
	}
	events := geocode.Compare(prior, address)
	if len(events) == 0 {
		return
	}
	s.metrics.ChangeEvents.Add(float64(len(events)))
	s.metrics.Notifications.Add(float64(len(events)))
	s.hub.PublishBatch(events)
}

// lookupAddress resolves the address for a position, consulting the cache
// before calling out to the geocoder. The cache and state locks are never
// held across the geocode call.
func (s *Service) lookupAddress(ctx context.Context, position geopos.Position) (geocode.AddressRecord, error) {
	key := coordinateKey(position)

	s.stateLock.RLock()
	cached, found := s.cache.Get(key)
	s.stateLock.RUnlock()
	if found {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	ctxGeocode, cancel := context.WithTimeout(ctx, GeocodeTimeout)
	defer cancel()

	start := time.Now()
	address, err := s.geocoder.Reverse(ctxGeocode, position.Latitude(), position.Longitude())
	s.metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return geocode.AddressRecord{}, fmt.Errorf("failed reverse geocode coordinates: %w", err)
	}
	return address, nil
}

// refreshAddress re-resolves the current position on the regular refresh
// cadence, bypassing the coordinate cache so upstream address data updates
// are picked up.
func (s *Service) refreshAddress(ctx context.Context) {
	s.stateLock.Lock()
	if !s.position.Valid() {
		s.stateLock.Unlock()
		return
	}
	position := s.position
	s.cache.Delete(coordinateKey(position))
	s.geocodeSeq++
	seq := s.geocodeSeq
	s.stateLock.Unlock()

	s.resolveAddress(ctx, position, seq, false)
}

// coordinateKey maps a position onto a cache key with roughly 11 meter cell
// granularity, so nearby repeat positions reuse the cached address.
func coordinateKey(position geopos.Position) string {
	return fmt.Sprintf("%.4f,%.4f", position.Latitude(), position.Longitude())
}
