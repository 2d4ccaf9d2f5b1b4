// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoclue

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/geoguide/internal/geopos"
	"github.com/wneessen/geoguide/internal/logger"
	"github.com/wneessen/geoguide/internal/sensor"
	"github.com/wneessen/geoguide/internal/vartype"
)

const (
	name = "geoclue"

	busName         = "org.freedesktop.GeoClue2"
	managerPath     = "/org/freedesktop/GeoClue2/Manager"
	managerIface    = "org.freedesktop.GeoClue2.Manager"
	clientIface     = "org.freedesktop.GeoClue2.Client"
	locationIface   = "org.freedesktop.GeoClue2.Location"
	locationUpdated = clientIface + ".LocationUpdated"

	// GClueAccuracyLevel exact
	accuracyLevelExact = uint32(8)

	signalBufferSize = 8

	// GeoClue reports these sentinels when a value is unknown.
	unknownHeading = -1.0
	unknownSpeed   = -1.0
)

// DesktopID identifies this service towards the GeoClue agent.
const DesktopID = "geoguide"

// Source streams location samples from the GeoClue2 D-Bus service.
type Source struct {
	name   string
	logger *logger.Logger
}

// New returns a GeoClue2-backed sample source.
func New(log *logger.Logger) *Source {
	return &Source{
		name:   name,
		logger: log,
	}
}

// Name returns the name of the source.
func (s *Source) Name() string {
	return s.name
}

// Stream connects to the GeoClue2 system bus service and emits one raw sample
// per LocationUpdated signal, reconnecting with backoff on failure.
func (s *Source) Stream(ctx context.Context) <-chan geopos.RawSample {
	out := make(chan geopos.RawSample)

	go func() {
		defer close(out)
		backoff := sensor.InitialBackoff()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := s.watch(ctx, out); err != nil {
				s.logger.Debug("geoclue watch ended, retrying", logger.Err(err))
				if !sensor.SleepOrDone(ctx, backoff) {
					return
				}
				backoff = sensor.NextBackoff(backoff)
				continue
			}
			return
		}
	}()

	return out
}

// watch registers a GeoClue client, starts it and forwards location updates
// until the context ends or the connection fails.
func (s *Source) watch(ctx context.Context, out chan<- geopos.RawSample) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.Error("failed to close system bus connection", logger.Err(closeErr))
		}
	}()

	var clientPath dbus.ObjectPath
	manager := conn.Object(busName, managerPath)
	if err = manager.CallWithContext(ctx, managerIface+".GetClient", 0).Store(&clientPath); err != nil {
		return fmt.Errorf("failed to get geoclue client: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(DesktopID)); err != nil {
		return fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err = client.SetProperty(clientIface+".RequestedAccuracyLevel", dbus.MakeVariant(accuracyLevelExact)); err != nil {
		return fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	if err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientIface),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		return fmt.Errorf("failed to subscribe to location updates: %w", err)
	}
	signals := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(signals)

	if err = client.CallWithContext(ctx, clientIface+".Start", 0).Err; err != nil {
		return fmt.Errorf("failed to start geoclue client: %w", err)
	}
	defer func() {
		if stopErr := client.Call(clientIface+".Stop", 0).Err; stopErr != nil {
			s.logger.Debug("failed to stop geoclue client", logger.Err(stopErr))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case signal, ok := <-signals:
			if !ok {
				return fmt.Errorf("system bus signal channel closed")
			}
			if signal.Name != locationUpdated || len(signal.Body) < 2 {
				continue
			}
			locationPath, ok := signal.Body[1].(dbus.ObjectPath)
			if !ok {
				continue
			}
			sample, err := s.readLocation(conn, locationPath)
			if err != nil {
				s.logger.Error("failed to read geoclue location", logger.Err(err))
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			case out <- sample:
			}
		}
	}
}

// readLocation reads the properties of a GeoClue location object and maps them
// to a raw sample.
func (s *Source) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (geopos.RawSample, error) {
	location := conn.Object(busName, path)
	sample := geopos.RawSample{Timestamp: time.Now()}

	latitude, err := locationProperty(location, "Latitude")
	if err != nil {
		return sample, err
	}
	longitude, err := locationProperty(location, "Longitude")
	if err != nil {
		return sample, err
	}
	accuracy, err := locationProperty(location, "Accuracy")
	if err != nil {
		return sample, err
	}
	sample.Latitude = vartype.NewVariable(latitude)
	sample.Longitude = vartype.NewVariable(longitude)
	sample.AccuracyMeters = vartype.NewVariable(accuracy)

	// Optional fields carry sentinel values when GeoClue does not know them.
	if altitude, err := locationProperty(location, "Altitude"); err == nil && altitude > -1e8 {
		sample.Altitude = vartype.NewVariable(altitude)
	}
	if heading, err := locationProperty(location, "Heading"); err == nil && heading != unknownHeading {
		sample.Heading = vartype.NewVariable(heading)
	}
	if speed, err := locationProperty(location, "Speed"); err == nil && speed != unknownSpeed {
		sample.SpeedMps = vartype.NewVariable(speed)
	}

	return sample, nil
}

func locationProperty(location dbus.BusObject, property string) (float64, error) {
	variant, err := location.GetProperty(locationIface + "." + property)
	if err != nil {
		return 0, fmt.Errorf("failed to get location property %s: %w", property, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("location property %s is not a float64", property)
	}
	return value, nil
}
