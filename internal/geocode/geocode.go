// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the reverse geocoding interface, the normalized
// address record built from a geocoding response and the change detection
// between two consecutive address snapshots.
package geocode

import (
	"context"
	"strings"
)

// Tracked address field names. The order of TrackedFields is the fixed
// declaration order change events are emitted in.
const (
	FieldStreet             = "street"
	FieldNeighborhood       = "neighborhood"
	FieldMunicipality       = "municipality"
	FieldStateAbbreviation  = "stateAbbreviation"
	FieldMetropolitanRegion = "metropolitanRegion"
)

// TrackedFields lists the address fields the change detector compares, in
// emission order.
var TrackedFields = []string{
	FieldStreet,
	FieldNeighborhood,
	FieldMunicipality,
	FieldStateAbbreviation,
	FieldMetropolitanRegion,
}

// AddressRecord is a normalized structured address snapshot. Absent fields are
// empty strings, never a construction failure. The raw source payload is kept
// for traceability.
type AddressRecord struct {
	Street             string
	Neighborhood       string
	Municipality       string
	StateAbbreviation  string
	MetropolitanRegion string

	Raw map[string]string
}

// Geocoder defines an interface for reverse geocoding service providers.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, lat, lon float64) (AddressRecord, error)
}

// Key aliases accepted when normalizing a raw geocoding payload. Nominatim
// uses OSM tags, other providers use their own vocabulary; the first matching
// alias with a non-empty value wins.
var (
	streetKeys       = []string{"road", "street", "pedestrian", "footway"}
	neighborhoodKeys = []string{"suburb", "neighbourhood", "neighborhood", "city_district", "quarter"}
	municipalityKeys = []string{"city", "town", "village", "municipality"}
	stateCodeKeys    = []string{"ISO3166-2-lvl4", "state_code"}
	stateKeys        = []string{"state"}
)

// NewAddressRecord normalizes an arbitrary key/value geocoding payload into an
// AddressRecord. Partial or malformed payloads never fail normalization,
// anything that cannot be resolved stays absent.
func NewAddressRecord(payload map[string]string) AddressRecord {
	record := AddressRecord{Raw: payload}
	if payload == nil {
		return record
	}

	record.Street = firstPresent(payload, streetKeys)
	record.Neighborhood = firstPresent(payload, neighborhoodKeys)
	record.Municipality = firstPresent(payload, municipalityKeys)
	record.StateAbbreviation = normalizeStateCode(firstPresent(payload, stateCodeKeys))
	if record.StateAbbreviation == "" {
		record.StateAbbreviation = stateAbbreviation(firstPresent(payload, stateKeys))
	}
	record.MetropolitanRegion = metropolitanRegion(record.Municipality)

	return record
}

// Field returns the value of the tracked field with the given name. Unknown
// field names resolve to an empty value.
func (r AddressRecord) Field(name string) string {
	switch name {
	case FieldStreet:
		return r.Street
	case FieldNeighborhood:
		return r.Neighborhood
	case FieldMunicipality:
		return r.Municipality
	case FieldStateAbbreviation:
		return r.StateAbbreviation
	case FieldMetropolitanRegion:
		return r.MetropolitanRegion
	default:
		return ""
	}
}

// Empty returns true if no tracked field carries a value.
func (r AddressRecord) Empty() bool {
	for _, field := range TrackedFields {
		if strings.TrimSpace(r.Field(field)) != "" {
			return false
		}
	}
	return true
}

// String returns a short display form of the record, most local field first.
func (r AddressRecord) String() string {
	parts := make([]string, 0, len(TrackedFields))
	for _, field := range []string{FieldStreet, FieldNeighborhood, FieldMunicipality, FieldStateAbbreviation} {
		if value := strings.TrimSpace(r.Field(field)); value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) == 0 {
		return "no address data"
	}
	return strings.Join(parts, ", ")
}

func firstPresent(payload map[string]string, keys []string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(payload[key]); value != "" {
			return value
		}
	}
	return ""
}

// normalizeStateCode strips the country prefix from an ISO 3166-2 code, so
// "BR-MG" becomes "MG". Values that do not look like such a code are returned
// trimmed as-is.
func normalizeStateCode(code string) string {
	code = strings.TrimSpace(code)
	if idx := strings.LastIndex(code, "-"); idx != -1 {
		code = code[idx+1:]
	}
	return strings.ToUpper(code)
}
