// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/geoguide/internal/config"
	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/geocode/provider/nominatim"
	"github.com/wneessen/geoguide/internal/http"
	"github.com/wneessen/geoguide/internal/logger"
	"github.com/wneessen/geoguide/internal/sensor"
	"github.com/wneessen/geoguide/internal/sensor/geoclue"
	"github.com/wneessen/geoguide/internal/sensor/gpsd"
	"github.com/wneessen/geoguide/internal/sensor/locfile"
)

func (s *Service) selectGeocodeProvider(conf *config.Config, log *logger.Logger,
	lang language.Tag,
) (geocode.Geocoder, error) {
	switch strings.ToLower(conf.GeoCoder.Provider) {
	case "nominatim":
		return nominatim.New(http.New(log), lang), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}
}

func (s *Service) selectSensorSources() ([]sensor.Source, error) {
	var sources []sensor.Source

	if !s.config.Sensor.DisableGeolocationFile {
		sources = append(sources, locfile.New(s.config.Sensor.GeolocationFile))
	}

	if !s.config.Sensor.DisableGPSD {
		sources = append(sources, gpsd.New(s.logger))
	}

	if !s.config.Sensor.DisableGeoClue {
		sources = append(sources, geoclue.New(s.logger))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no sensor sources enabled")
	}

	return sources, nil
}
