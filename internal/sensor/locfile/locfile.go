// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package locfile

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/geoguide/internal/geopos"
	"github.com/wneessen/geoguide/internal/vartype"
)

const (
	name = "locfile"

	// defaultAccuracy is assumed when the file carries no accuracy column.
	defaultAccuracy = 25.0
)

var ErrNoCoordinates = fmt.Errorf("no valid coordinates found in geolocation file")

// Source reads location samples from a static geolocation file. The file
// holds one "lat,lon" or "lat,lon,accuracy" line; lines starting with # are
// ignored. The file is re-read periodically, and a sample is only emitted
// when the coordinates changed.
type Source struct {
	name   string
	path   string
	period time.Duration

	lastLat, lastLon float64
	haveLast         bool
}

// New returns a file-backed sample source for the given path.
func New(path string) *Source {
	return &Source{
		name:   name,
		path:   path,
		period: time.Minute * 2,
	}
}

// Name returns the name of the source.
func (s *Source) Name() string {
	return s.name
}

// Stream periodically reads the geolocation file and emits a sample whenever
// its coordinates change.
func (s *Source) Stream(ctx context.Context) <-chan geopos.RawSample {
	out := make(chan geopos.RawSample)

	go func() {
		defer close(out)
		firstRun := true

		for {
			if !firstRun {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.period):
				}
			}
			firstRun = false

			lat, lon, acc, err := s.readFile()
			if err != nil {
				continue
			}
			if s.haveLast && lat == s.lastLat && lon == s.lastLon {
				continue
			}
			s.lastLat, s.lastLon = lat, lon
			s.haveLast = true

			sample := geopos.RawSample{
				Latitude:       vartype.NewVariable(lat),
				Longitude:      vartype.NewVariable(lon),
				AccuracyMeters: vartype.NewVariable(acc),
				Timestamp:      time.Now(),
			}

			select {
			case <-ctx.Done():
				return
			case out <- sample:
			}
		}
	}()

	return out
}

// readFile reads and parses the geolocation file at the configured path.
func (s *Source) readFile() (lat, lon, acc float64, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read geolocation file %q: %w", s.path, err)
	}
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		lat, err = strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}
		lon, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		acc = defaultAccuracy
		if len(fields) > 2 {
			if parsed, accErr := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); accErr == nil {
				acc = parsed
			}
		}
		return lat, lon, acc, nil
	}
	return 0, 0, 0, ErrNoCoordinates
}
