// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/geoguide/internal/geopos"
)

const (
	configEnv = "GEOGUIDE"

	// ProfileMobile and ProfileDesktop select the device accuracy policy.
	ProfileMobile  = "mobile"
	ProfileDesktop = "desktop"

	// Default minimum time between regular position updates, per profile.
	defaultMinTimeDesktop = 30 * time.Second
	defaultMinTimeMobile  = 50 * time.Second

	defaultLocale = "pt-BR"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Validator struct {
		MinDistanceMeters float64 `fig:"min_distance_meters" default:"20"`
		// Zero means the profile default (30s desktop, 50s mobile)
		MinTimeChange time.Duration `fig:"min_time_change"`
		// Allowed values: mobile, desktop
		Profile string `fig:"profile" default:"desktop"`
	} `fig:"validator"`

	Cache struct {
		Capacity int `fig:"capacity" default:"128"`
	} `fig:"cache"`

	GeoCoder struct {
		// Allowed value: nominatim
		Provider string `fig:"provider" default:"nominatim"`
	} `fig:"geocoder"`

	Sensor struct {
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeoClue         bool   `fig:"disable_geoclue"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		GeolocationFile        string `fig:"geolocation_file"`
	} `fig:"sensor"`

	Intervals struct {
		Output  time.Duration `fig:"output" default:"30s"`
		Refresh time.Duration `fig:"refresh" default:"5m"`
	} `fig:"intervals"`
}

// NewFromFile loads the configuration from the given file, with environment
// overrides applied.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// New loads the configuration from defaults and environment overrides alone.
func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate normalizes the configuration and rejects invalid values.
func (c *Config) Validate() error {
	if c.Validator.Profile != ProfileMobile && c.Validator.Profile != ProfileDesktop {
		return fmt.Errorf("invalid validator profile: %s", c.Validator.Profile)
	}
	if c.Validator.MinDistanceMeters < 0 {
		return fmt.Errorf("invalid minimum distance: %f", c.Validator.MinDistanceMeters)
	}
	if c.Validator.MinTimeChange == 0 {
		c.Validator.MinTimeChange = defaultMinTimeDesktop
		if c.Validator.Profile == ProfileMobile {
			c.Validator.MinTimeChange = defaultMinTimeMobile
		}
	}
	if c.Validator.MinTimeChange < 0 {
		return fmt.Errorf("invalid minimum time change: %s", c.Validator.MinTimeChange)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("invalid cache capacity: %d", c.Cache.Capacity)
	}
	if c.GeoCoder.Provider == "" {
		return fmt.Errorf("no geocoder provider configured")
	}
	if c.Sensor.GeolocationFile == "" {
		home, _ := os.UserHomeDir()
		c.Sensor.GeolocationFile = filepath.Join(home, ".config", "geoguide", "geolocation")
	}
	if c.Locale == "" {
		c.Locale = detectLocale()
	}

	return nil
}

// Policy returns the device accuracy policy for the configured profile.
func (c *Config) Policy() geopos.Policy {
	if c.Validator.Profile == ProfileMobile {
		return geopos.PolicyMobile
	}
	return geopos.PolicyDesktop
}

// LanguageTag parses the configured locale into a language tag, falling back
// to the default locale when parsing fails.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.MustParse(defaultLocale)
	}
	return tag
}

// detectLocale determines the system locale, preferring the LC_MESSAGES
// environment over OS-level detection.
func detectLocale() string {
	if messages := os.Getenv("LC_MESSAGES"); messages != "" {
		if idx := strings.Index(messages, "."); idx != -1 {
			messages = messages[:idx]
		}
		return strings.ReplaceAll(messages, "_", "-")
	}
	tag, err := locale.Detect()
	if err != nil {
		return defaultLocale
	}
	return tag.String()
}
