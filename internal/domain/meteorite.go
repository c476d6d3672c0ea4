package domain

import (
	"encoding/json"
	"strings"
)

// RawMeteoriteRow is one record of the NASA Meteorite Landings dataset.
// Socrata serves every field as a string; geolocation is a GeoJSON-style
// point with [lon, lat] coordinate order.
type RawMeteoriteRow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	NameType    string          `json:"nametype"`
	RecClass    string          `json:"recclass"`
	MassG       string          `json:"mass"`
	Year        string          `json:"year"`
	RecLat      string          `json:"reclat"`
	RecLong     string          `json:"reclong"`
	Geolocation json.RawMessage `json:"geolocation"`
}

// MeteoriteRecord is a normalized meteorite landing.
type MeteoriteRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	NameType string   `json:"nametype"`
	RecClass string   `json:"recclass"`
	MassG    *float64 `json:"mass_g,omitempty"`
	Year     string   `json:"year,omitempty"`
	Lat      *float64 `json:"latitude,omitempty"`
	Lon      *float64 `json:"longitude,omitempty"`
}

// NormalizeMeteorite converts a raw Socrata row to a typed record. The year
// column carries a full timestamp, of which only the year is meaningful.
// Coordinates fall back to the geolocation point when the reclat/reclong
// columns are blank.
func NormalizeMeteorite(row RawMeteoriteRow) MeteoriteRecord {
	rec := MeteoriteRecord{
		ID:       row.ID,
		Name:     row.Name,
		NameType: row.NameType,
		RecClass: row.RecClass,
		MassG:    parseOptionalFloat(strings.ReplaceAll(row.MassG, ",", "")),
		Lat:      parseOptionalFloat(row.RecLat),
		Lon:      parseOptionalFloat(row.RecLong),
	}

	if year := strings.TrimSpace(row.Year); len(year) >= 4 {
		rec.Year = year[:4]
	}

	if (rec.Lat == nil || rec.Lon == nil) && len(row.Geolocation) > 0 {
		var point struct {
			Coordinates []float64 `json:"coordinates"`
		}
		if err := json.Unmarshal(row.Geolocation, &point); err == nil && len(point.Coordinates) >= 2 {
			if rec.Lon == nil {
				rec.Lon = &point.Coordinates[0]
			}
			if rec.Lat == nil {
				rec.Lat = &point.Coordinates[1]
			}
		}
	}
	return rec
}
