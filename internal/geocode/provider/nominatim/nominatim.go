// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/geoguide/internal/geocode"
	"github.com/wneessen/geoguide/internal/http"
)

const (
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"
)

// Nominatim is a reverse geocoder backed by the OpenStreetMap Nominatim API.
type Nominatim struct {
	http *http.Client
	lang language.Tag
}

// ReverseResult is the subset of the Nominatim jsonv2 reverse response we care
// about. The address payload is kept as an arbitrary key/value map and
// normalized defensively, so partial or unexpected responses never fail.
type ReverseResult struct {
	APILat      string         `json:"lat"`
	APILon      string         `json:"lon"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
}

// New returns a new Nominatim reverse geocoder using the given HTTP client and
// response language.
func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

// Name returns the name of the provider.
func (n *Nominatim) Name() string {
	return name
}

// Reverse resolves the given coordinates into a normalized address record via
// the Nominatim reverse API.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (geocode.AddressRecord, error) {
	var result ReverseResult

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("accept-language", n.lang.String())

	if _, err := n.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.AddressRecord{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}

	return geocode.NewAddressRecord(stringifyPayload(result.Address)), nil
}

// stringifyPayload flattens the raw address payload into the string map the
// record normalization expects. Non-scalar values are dropped.
func stringifyPayload(payload map[string]any) map[string]string {
	if payload == nil {
		return nil
	}
	flat := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			flat[key] = v
		case float64, bool:
			flat[key] = fmt.Sprint(v)
		}
	}
	return flat
}
