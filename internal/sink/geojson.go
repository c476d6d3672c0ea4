package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string             `json:"type"`
	Geometry   pointGeometry      `json:"geometry"`
	Properties fireballProperties `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

type fireballProperties struct {
	Date         string   `json:"date,omitempty"`
	EnergyKt     *float64 `json:"energy_kilotons,omitempty"`
	ImpactEnergy *float64 `json:"impact_energy_kilotons,omitempty"`
	AltitudeKm   *float64 `json:"altitude_km,omitempty"`
	VelocityKmS  *float64 `json:"velocity_km_s,omitempty"`
}

// WriteFireballGeoJSON writes fireball events as a GeoJSON FeatureCollection
// of points, replacing any existing file at path. Events without a reported
// coordinate are skipped.
func WriteFireballGeoJSON(path string, events []domain.FireballEvent) error {
	collection := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, event := range events {
		if !event.HasCoordinate {
			continue
		}
		props := fireballProperties{
			EnergyKt:     event.EnergyKt,
			ImpactEnergy: event.ImpactEnergy,
			AltitudeKm:   event.AltitudeKm,
			VelocityKmS:  event.VelocityKmS,
		}
		if !event.Date.IsZero() {
			props.Date = event.Date.Format(time.RFC3339)
		}
		collection.Features = append(collection.Features, feature{
			Type:       "Feature",
			Geometry:   pointGeometry{Type: "Point", Coordinates: [2]float64{*event.Lon, *event.Lat}},
			Properties: props,
		})
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fireball geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fireball geojson: %w", err)
	}
	return nil
}
