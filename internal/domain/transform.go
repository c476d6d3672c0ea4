package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRawRecord deserializes a RawRecord's value into a NEORecord.
// It expects the flat JSON row produced by the NeoWs adapter.
func ParseRawRecord(raw RawRecord) (NEORecord, error) {
	var row RawFeedRow
	if err := json.Unmarshal(raw.Value, &row); err != nil {
		return NEORecord{}, fmt.Errorf("parse raw record: %w", err)
	}

	diameter := midpoint(parseFloatOrZero(row.DiameterMinM), parseFloatOrZero(row.DiameterMaxM))
	velocity := parseFloatOrZero(row.VelocityKmS)

	rec := NEORecord{
		ID:             generateID(row.NeoRefID, row.ApproachDate, diameter, velocity),
		NeoRefID:       row.NeoRefID,
		Name:           row.Name,
		ApproachDate:   parseApproachDate(row.ApproachDate, raw.FetchedAt),
		DiameterM:      diameter,
		VelocityKmS:    velocity,
		MissDistanceKm: parseFloatOrZero(row.MissDistanceKm),
		MOIDAU:         ParseMOID(row.MOIDAU),
		Hazardous:      row.Hazardous,
		OrbitingBody:   row.OrbitingBody,
		RawPayload:     raw.Value,
	}
	if rec.MOIDAU != nil {
		rec.MOIDSource = "feed"
	}
	return rec, nil
}

// ParseMOID parses a MOID string in AU. Empty or unparseable values yield nil
// so callers can distinguish "no MOID" from a genuine zero.
func ParseMOID(s string) *float64 {
	return parseOptionalFloat(s)
}

// parseOptionalFloat parses a string as float64, returning nil when the
// value is empty or unparseable.
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// midpoint returns the center of a min/max estimate, or whichever bound is
// present when the other is unreported.
func midpoint(minV, maxV float64) float64 {
	if minV == 0 {
		return maxV
	}
	if maxV == 0 {
		return minV
	}
	return (minV + maxV) / 2
}

// parseApproachDate parses a YYYY-MM-DD close-approach date, falling back to
// the fetch timestamp's date when absent or malformed.
func parseApproachDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return fallback.UTC().Truncate(24 * time.Hour)
}

// generateID produces a deterministic ID from the record's key fields.
// Reprocessing the same catalog row yields the same ID, so downstream
// consumers can deduplicate replays.
func generateID(neoRefID, approachDate string, diameterM, velocityKmS float64) string {
	input := fmt.Sprintf("%s|%s|%.3f|%.3f", neoRefID, approachDate, diameterM, velocityKmS)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if neoRefID == "" {
		return "neo-" + short
	}
	return "neo-" + neoRefID + "-" + short
}

// AssessOptions carries the tunable physical assumptions for an assessment.
// Zero fields take the package defaults (threshold excepted: a zero threshold
// classifies nothing as intersecting, which is the safe direction).
type AssessOptions struct {
	DensityKgM3       float64
	TargetDensityKgM3 float64
	GravityMS2        float64
	MOIDThresholdAU   float64
}

// AssessRecord runs the impact estimator and MOID classification for a parsed
// record. A missing MOID is reported via MOIDSource "missing" and a nil MOID
// field, never a zero value.
func AssessRecord(rec NEORecord, opts AssessOptions) (HazardEvent, error) {
	estimate, err := EstimateImpact(Impactor{
		DiameterM:         rec.DiameterM,
		VelocityKmS:       rec.VelocityKmS,
		DensityKgM3:       opts.DensityKgM3,
		TargetDensityKgM3: opts.TargetDensityKgM3,
		GravityMS2:        opts.GravityMS2,
	})
	if err != nil {
		return HazardEvent{}, fmt.Errorf("assess %s: %w", rec.ID, err)
	}

	event := HazardEvent{
		ID:             rec.ID,
		NeoRefID:       rec.NeoRefID,
		Name:           rec.Name,
		ApproachDate:   rec.ApproachDate,
		DiameterM:      rec.DiameterM,
		VelocityKmS:    rec.VelocityKmS,
		MissDistanceKm: rec.MissDistanceKm,
		Hazardous:      rec.Hazardous,
		OrbitingBody:   rec.OrbitingBody,
		Impact:         estimate,
		MOIDSource:     "missing",
		RawPayload:     rec.RawPayload,
		AssessedAt:     clock.Now(),
	}

	if moid, err := ClassifyMOID(rec.MOIDAU, opts.MOIDThresholdAU); err == nil {
		event.MOID = &moid
		event.MOIDSource = rec.MOIDSource
	}

	return event, nil
}
