package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

func TestWriteFireballGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fireballs.geojson")
	lat, lon, energy := 33.2, -118.4, 4.6

	events := []domain.FireballEvent{
		{
			Date:          time.Date(2025, 7, 15, 3, 21, 44, 0, time.UTC),
			EnergyKt:      &energy,
			Lat:           &lat,
			Lon:           &lon,
			HasCoordinate: true,
		},
		{EnergyKt: &energy}, // no coordinate, skipped
	}

	require.NoError(t, WriteFireballGeoJSON(path, events))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var collection struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry struct {
				Type        string     `json:"type"`
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &collection))

	assert.Equal(t, "FeatureCollection", collection.Type)
	require.Len(t, collection.Features, 1)

	feat := collection.Features[0]
	assert.Equal(t, "Point", feat.Geometry.Type)
	assert.InDelta(t, -118.4, feat.Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, 33.2, feat.Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, "2025-07-15T03:21:44Z", feat.Properties["date"])
	assert.InDelta(t, 4.6, feat.Properties["energy_kilotons"].(float64), 1e-9)
}

func TestWriteFireballGeoJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fireballs.geojson")
	require.NoError(t, WriteFireballGeoJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"features": []`)
}
