// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/wneessen/geoguide/internal/geopos"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel          = slog.LevelInfo
		expectMinDistance       = 20.0
		expectProfile           = ProfileDesktop
		expectCacheCapacity     = 128
		expectGeocoderProvider  = "nominatim"
		expectIntervalOutput    = time.Second * 30
		expectIntervalRefresh   = time.Minute * 5
		expectDesktopMinTime    = time.Second * 30
		expectMobileMinTimeWait = time.Second * 50
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Errorf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Validator.MinDistanceMeters != expectMinDistance {
			t.Errorf("expected minimum distance to be: %f, got %f", expectMinDistance,
				conf.Validator.MinDistanceMeters)
		}
		if conf.Validator.Profile != expectProfile {
			t.Errorf("expected profile to be: %s, got %s", expectProfile, conf.Validator.Profile)
		}
		if conf.Validator.MinTimeChange != expectDesktopMinTime {
			t.Errorf("expected minimum time change to be: %s, got %s", expectDesktopMinTime,
				conf.Validator.MinTimeChange)
		}
		if conf.Cache.Capacity != expectCacheCapacity {
			t.Errorf("expected cache capacity to be: %d, got %d", expectCacheCapacity, conf.Cache.Capacity)
		}
		if conf.GeoCoder.Provider != expectGeocoderProvider {
			t.Errorf("expected geocoder provider to be: %s, got %s", expectGeocoderProvider,
				conf.GeoCoder.Provider)
		}
		if conf.Intervals.Output != expectIntervalOutput {
			t.Errorf("expected output interval to be: %s, got %s", expectIntervalOutput, conf.Intervals.Output)
		}
		if conf.Intervals.Refresh != expectIntervalRefresh {
			t.Errorf("expected refresh interval to be: %s, got %s", expectIntervalRefresh,
				conf.Intervals.Refresh)
		}
		if conf.Sensor.GeolocationFile == "" {
			t.Error("expected geolocation file to have a default path")
		}
	})
	t.Run("mobile profile changes the minimum time change default", func(t *testing.T) {
		t.Setenv("GEOGUIDE_VALIDATOR_PROFILE", ProfileMobile)
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Validator.MinTimeChange != expectMobileMinTimeWait {
			t.Errorf("expected minimum time change to be: %s, got %s", expectMobileMinTimeWait,
				conf.Validator.MinTimeChange)
		}
		if conf.Policy() != geopos.PolicyMobile {
			t.Errorf("expected mobile policy, got %s", conf.Policy())
		}
	})
	t.Run("explicit minimum time change is kept regardless of profile", func(t *testing.T) {
		t.Setenv("GEOGUIDE_VALIDATOR_PROFILE", ProfileMobile)
		t.Setenv("GEOGUIDE_VALIDATOR_MIN_TIME_CHANGE", "42s")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Validator.MinTimeChange != time.Second*42 {
			t.Errorf("expected minimum time change to be: %s, got %s", time.Second*42,
				conf.Validator.MinTimeChange)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("GEOGUIDE_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validate profile", func(t *testing.T) {
		t.Setenv("GEOGUIDE_VALIDATOR_PROFILE", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validate minimum distance", func(t *testing.T) {
		t.Setenv("GEOGUIDE_VALIDATOR_MIN_DISTANCE_METERS", "-1")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validate cache capacity", func(t *testing.T) {
		t.Setenv("GEOGUIDE_CACHE_CAPACITY", "0")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
		t.Setenv("GEOGUIDE_CACHE_CAPACITY", "-5")
		_, err = New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config language tag falls back on invalid locale", func(t *testing.T) {
		t.Setenv("GEOGUIDE_LOCALE", "!!not-a-locale!!")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if got := conf.LanguageTag().String(); got != "pt-BR" {
			t.Errorf("expected fallback language tag pt-BR, got %s", got)
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Validator.Profile != ProfileDesktop {
			t.Errorf("expected profile to be: %s, got %s", ProfileDesktop, conf.Validator.Profile)
		}
		if conf.Cache.Capacity != 128 {
			t.Errorf("expected cache capacity to be: %d, got %d", 128, conf.Cache.Capacity)
		}
		if conf.GeoCoder.Provider != "nominatim" {
			t.Errorf("expected geocoder provider to be: %s, got %s", "nominatim", conf.GeoCoder.Provider)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}
