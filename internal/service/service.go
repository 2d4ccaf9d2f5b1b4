// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the position pipeline together: sensor sources feed
// raw samples into the validator, accepted positions are reverse geocoded,
// the resulting address is cached and diffed, and field changes are fanned
// out through the notification hub.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wneessen/geoguide/internal/addrcache"
	"github.com/wneessen/geoguide/internal/config"
	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/geopos"
	"github.com/wneessen/geoguide/internal/logger"
	"github.com/wneessen/geoguide/internal/notify"
	"github.com/wneessen/geoguide/internal/observability"
)

const (
	DesktopID = "geoguide"

	// CurrentAddressKey is the cache key holding the currently displayed
	// address. Setting it returns the prior address for change detection.
	CurrentAddressKey = "current"

	sampleBufferSize = 32
)

type outputData struct {
	Text    string  `json:"text"`
	Tooltip string  `json:"tooltip"`
	Class   string  `json:"class"`
	Lat     float64 `json:"latitude"`
	Lon     float64 `json:"longitude"`
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	geocoder  geocode.Geocoder
	hub       *notify.Hub
	metrics   *observability.Metrics
	scheduler gocron.Scheduler
	validator *geopos.Validator
	output    io.Writer

	SignalSrc signalSource

	jobs []gocron.Job

	// stateLock guards the cache, the displayed position/address and the
	// geocode sequence counter. The geocode call itself never runs under
	// this lock.
	stateLock    sync.RWMutex
	cache        *addrcache.Cache[string, geocode.AddressRecord]
	position     geopos.Position
	address      geocode.AddressRecord
	addressIsSet bool
	geocodeSeq   uint64
}

func New(conf *config.Config, log *logger.Logger, metrics *observability.Metrics) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	cache, err := addrcache.New[string, geocode.AddressRecord](conf.Cache.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create address cache: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		hub:       notify.New(log),
		metrics:   metrics,
		scheduler: scheduler,
		validator: geopos.NewValidator(conf.Validator.MinDistanceMeters, conf.Validator.MinTimeChange,
			conf.Policy()),
		cache:     cache,
		output:    os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	return service, nil
}

// Hub exposes the notification hub so external consumers (displayers, speech
// output) can subscribe to address field changes.
func (s *Service) Hub() *notify.Hub {
	return s.hub
}

func (s *Service) Run(ctx context.Context) error {
	geocoder, err := s.selectGeocodeProvider(s.config, s.logger, s.config.LanguageTag())
	if err != nil {
		return fmt.Errorf("failed to create geocode provider: %w", err)
	}
	if s.geocoder == nil {
		s.geocoder = geocoder
	}

	sources, err := s.selectSensorSources()
	if err != nil {
		return fmt.Errorf("failed to create sensor sources: %w", err)
	}

	// Start scheduled jobs
	if err = s.createScheduledJob(ctx, s.config.Intervals.Output, s.printAddress,
		"address_output_job"); err != nil {
		return err
	}
	if err = s.createScheduledJob(ctx, s.config.Intervals.Refresh, s.refreshAddress,
		"address_refresh_job"); err != nil {
		return err
	}
	s.scheduler.Start()
	s.metrics.PipelineRunning.Set(1)

	// Merge all sensor sources into a single sample stream
	samples := make(chan geopos.RawSample, sampleBufferSize)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.forwardSamples(ctx, src, samples)
		}()
	}
	go s.processSamples(ctx, samples)

	// Wait for the context to cancel
	<-ctx.Done()
	wg.Wait()
	s.hub.Close()
	s.metrics.PipelineRunning.Set(0)
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// runJobsNow reschedules all cadence jobs for immediate execution. Used when
// a sample is accepted as immediate, so displays update without waiting for
// the normal interval.
func (s *Service) runJobsNow() {
	for _, job := range s.jobs {
		if job == nil {
			continue
		}
		if err := job.RunNow(); err != nil {
			s.logger.Error("failed to trigger job", slog.String("job", job.Name()), logger.Err(err))
		}
	}
}

// printAddress writes the current address as JSON to the output writer. When
// no address has been resolved yet, it falls back to raw coordinates.
func (s *Service) printAddress(context.Context) {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	if !s.position.Valid() {
		return
	}

	output := outputData{
		Class: DesktopID,
		Lat:   s.position.Latitude(),
		Lon:   s.position.Longitude(),
	}
	if s.addressIsSet && !s.address.Empty() {
		output.Text = displayText(s.address)
		output.Tooltip = s.address.String()
	} else {
		output.Text = s.position.String()
		output.Tooltip = s.position.String()
	}

	if err := json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode address data", logger.Err(err))
	}
}

// displayText renders the short display line for an address, preferring the
// neighborhood and municipality the way a spoken street guide announces them.
func displayText(address geocode.AddressRecord) string {
	switch {
	case address.Neighborhood != "" && address.Municipality != "":
		return fmt.Sprintf("%s, %s", address.Neighborhood, address.Municipality)
	case address.Municipality != "" && address.StateAbbreviation != "":
		return fmt.Sprintf("%s, %s", address.Municipality, address.StateAbbreviation)
	case address.Municipality != "":
		return address.Municipality
	case address.Street != "":
		return address.Street
	default:
		return address.String()
	}
}
