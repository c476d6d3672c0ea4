package domain

import "time"

// RawFeedRow is the flat JSON row produced by the NeoWs adapter. One row per
// close approach; numeric fields stay strings because the upstream API
// serializes them that way and empty means unreported.
type RawFeedRow struct {
	NeoRefID       string `json:"neo_reference_id"`
	Name           string `json:"name"`
	ApproachDate   string `json:"close_approach_date"` // YYYY-MM-DD
	DiameterMinM   string `json:"est_diameter_min_m"`
	DiameterMaxM   string `json:"est_diameter_max_m"`
	VelocityKmS    string `json:"velocity_km_s"`
	MissDistanceKm string `json:"miss_distance_km"`
	MOIDAU         string `json:"moid_au"`
	Hazardous      bool   `json:"is_hazardous"`
	OrbitingBody   string `json:"orbiting_body"`
}

// RawRecord is an unprocessed catalog row as delivered by an extractor.
type RawRecord struct {
	Value     []byte
	Source    string // e.g. "neows"
	FetchedAt time.Time
}

// NEORecord is the typed representation of one close-approach row.
type NEORecord struct {
	ID             string
	NeoRefID       string
	Name           string
	ApproachDate   time.Time
	DiameterM      float64 // midpoint of the estimated diameter range
	VelocityKmS    float64
	MissDistanceKm float64
	MOIDAU         *float64 // nil when the catalog row carries no MOID
	MOIDSource     string   // "feed" or "sbdb"; empty when MOIDAU is nil
	Hazardous      bool
	OrbitingBody   string

	RawPayload []byte
}

// HazardEvent is the assessed record destined for the sink.
type HazardEvent struct {
	ID             string         `json:"id"`
	NeoRefID       string         `json:"neo_reference_id"`
	Name           string         `json:"name"`
	ApproachDate   time.Time      `json:"close_approach_date"`
	DiameterM      float64        `json:"diameter_m"`
	VelocityKmS    float64        `json:"velocity_km_s"`
	MissDistanceKm float64        `json:"miss_distance_km"`
	Hazardous      bool           `json:"is_hazardous"`
	OrbitingBody   string         `json:"orbiting_body,omitempty"`
	Impact         ImpactEstimate `json:"impact"`
	MOID           *MOIDResult    `json:"moid,omitempty"`
	MOIDSource     string         `json:"moid_source,omitempty"` // "feed", "sbdb", "missing"

	RawPayload []byte    `json:"-"`
	AssessedAt time.Time `json:"assessed_at"`
}
