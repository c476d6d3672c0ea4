package domain

import (
	"math"
	"strings"
	"time"
)

// RawFireballRow is one row of the JPL Fireball API keyed by field name.
// Latitude and longitude come with separate hemisphere columns (N/S, E/W).
type RawFireballRow struct {
	Date        string `json:"date"`
	EnergyKt    string `json:"energy"`
	ImpactE     string `json:"impact-e"`
	Lat         string `json:"lat"`
	LatDir      string `json:"lat-dir"`
	Lon         string `json:"lon"`
	LonDir      string `json:"lon-dir"`
	AltitudeKm  string `json:"alt"`
	VelocityKmS string `json:"vel"`
}

// FireballEvent is a normalized atmospheric-entry event.
type FireballEvent struct {
	Date          time.Time `json:"date"`
	EnergyKt      *float64  `json:"energy_kilotons,omitempty"`
	ImpactEnergy  *float64  `json:"impact_energy_kilotons,omitempty"`
	Lat           *float64  `json:"latitude,omitempty"`
	Lon           *float64  `json:"longitude,omitempty"`
	AltitudeKm    *float64  `json:"altitude_km,omitempty"`
	VelocityKmS   *float64  `json:"velocity_km_s,omitempty"`
	HasCoordinate bool      `json:"-"`
}

// NormalizeFireball converts a raw fireball row to a typed event, applying
// hemisphere signs (S and W negative) and leaving unreported fields nil.
func NormalizeFireball(row RawFireballRow) FireballEvent {
	event := FireballEvent{
		EnergyKt:     parseOptionalFloat(row.EnergyKt),
		ImpactEnergy: parseOptionalFloat(row.ImpactE),
		AltitudeKm:   parseOptionalFloat(row.AltitudeKm),
		VelocityKmS:  parseOptionalFloat(row.VelocityKmS),
	}

	if t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(row.Date)); err == nil {
		event.Date = t.UTC()
	}

	event.Lat = signedCoordinate(row.Lat, row.LatDir, "S")
	event.Lon = signedCoordinate(row.Lon, row.LonDir, "W")
	event.HasCoordinate = event.Lat != nil && event.Lon != nil
	return event
}

// signedCoordinate parses a coordinate magnitude and applies the hemisphere
// sign: the negative direction flips the value negative.
func signedCoordinate(value, dir, negative string) *float64 {
	v := parseOptionalFloat(value)
	if v == nil {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(dir), negative) {
		neg := -math.Abs(*v)
		return &neg
	}
	return v
}
