package domain

import "math"

// AUKilometers is the IAU astronomical unit in kilometers (exact).
const AUKilometers = 149597870.7

// Vec3 is a Cartesian vector in a target-centered frame, in kilometers
// (or km/s for velocities).
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// EphemerisPoint is one row of a body's ephemeris: position and velocity at
// a Julian-date epoch, already expressed in the caller's target-centered
// frame. This package performs no frame transforms.
type EphemerisPoint struct {
	EpochJD  float64 `json:"epoch_jd"`
	Position Vec3    `json:"position_km"`
	Velocity Vec3    `json:"velocity_km_s"`
}

// ApproachResult reports the minimum distance over an ephemeris series.
type ApproachResult struct {
	MinDistanceKm float64 `json:"min_distance_km"`
	MinEpochJD    float64 `json:"min_epoch_jd"`
	Intersects    bool    `json:"intersects"`
}

// ClosestApproach scans a time-ordered ephemeris series and returns the point
// of minimum distance from the frame center. Ties are broken by the earliest
// epoch. Returns ErrEmptySeries for a zero-length series.
func ClosestApproach(points []EphemerisPoint, thresholdKm float64) (ApproachResult, error) {
	if len(points) == 0 {
		return ApproachResult{}, ErrEmptySeries
	}

	minDist := points[0].Position.Norm()
	minEpoch := points[0].EpochJD
	for _, p := range points[1:] {
		d := p.Position.Norm()
		if d < minDist || (d == minDist && p.EpochJD < minEpoch) {
			minDist = d
			minEpoch = p.EpochJD
		}
	}

	return ApproachResult{
		MinDistanceKm: minDist,
		MinEpochJD:    minEpoch,
		Intersects:    minDist <= thresholdKm,
	}, nil
}

// MOIDResult is a minimum-orbit-intersection-distance classification.
type MOIDResult struct {
	MOIDAU     float64 `json:"moid_au"`
	MOIDKm     float64 `json:"moid_km"`
	Intersects bool    `json:"intersects"`
}

// ClassifyMOID compares a MOID against an AU threshold. A nil or non-real
// MOID yields ErrMissingMOID; absence is reported, never defaulted to zero.
func ClassifyMOID(moidAU *float64, thresholdAU float64) (MOIDResult, error) {
	if moidAU == nil || math.IsNaN(*moidAU) || math.IsInf(*moidAU, 0) {
		return MOIDResult{}, ErrMissingMOID
	}
	return MOIDResult{
		MOIDAU:     *moidAU,
		MOIDKm:     *moidAU * AUKilometers,
		Intersects: *moidAU <= thresholdAU,
	}, nil
}
