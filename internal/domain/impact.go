package domain

import "math"

// Default physical assumptions. Density is typical for a stony asteroid,
// target density for crustal rock.
const (
	DefaultDensityKgM3       = 3000.0
	DefaultTargetDensityKgM3 = 2700.0
	DefaultGravityMS2        = 9.81
)

// JoulesPerMegatonTNT converts impact energy to megatons of TNT equivalent.
const JoulesPerMegatonTNT = 4.184e15

const (
	// seaLevelAirDensityKgM3 is the fixed air density used for the dynamic
	// pressure estimate; the model does not integrate over altitude.
	seaLevelAirDensityKgM3 = 1.2

	// breakupStrengthPa is the dynamic pressure above which a stony body
	// fragments (10 MPa).
	breakupStrengthPa = 1e7

	// airburstMaxDiameterM is the size above which a body is assumed to
	// reach the ground intact regardless of dynamic pressure.
	airburstMaxDiameterM = 60.0
)

// DamageLevel is an ordinal severity tier derived from impact energy.
type DamageLevel string

const (
	DamageNegligible DamageLevel = "negligible"
	DamageLocal      DamageLevel = "local"
	DamageRegional   DamageLevel = "regional"
	DamageGlobal     DamageLevel = "global catastrophic"
)

// Impactor describes a single impacting body. Zero optional fields
// (DensityKgM3, TargetDensityKgM3, GravityMS2) take the package defaults;
// explicitly set values must be positive.
type Impactor struct {
	DiameterM         float64
	VelocityKmS       float64
	DensityKgM3       float64
	TargetDensityKgM3 float64
	GravityMS2        float64
}

// withDefaults fills unset optional fields.
func (imp Impactor) withDefaults() Impactor {
	if imp.DensityKgM3 == 0 {
		imp.DensityKgM3 = DefaultDensityKgM3
	}
	if imp.TargetDensityKgM3 == 0 {
		imp.TargetDensityKgM3 = DefaultTargetDensityKgM3
	}
	if imp.GravityMS2 == 0 {
		imp.GravityMS2 = DefaultGravityMS2
	}
	return imp
}

// validate rejects non-positive or non-real parameters.
func (imp Impactor) validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"diameter_m", imp.DiameterM},
		{"velocity_km_s", imp.VelocityKmS},
		{"density_kg_m3", imp.DensityKgM3},
		{"target_density_kg_m3", imp.TargetDensityKgM3},
		{"gravity_m_s2", imp.GravityMS2},
	}
	for _, c := range checks {
		if c.value <= 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &InvalidInputError{Field: c.field, Value: c.value}
		}
	}
	return nil
}

// ImpactEstimate is the derived result of an impact evaluation.
// CraterDiameterM is zero for airbursts; DamageRadiusKm comes from blast-wave
// scaling for airbursts and from crater size for ground impacts.
type ImpactEstimate struct {
	MassKg            float64     `json:"mass_kg"`
	EnergyJoules      float64     `json:"energy_joules"`
	EnergyMegatonsTNT float64     `json:"energy_megatons_tnt"`
	Airburst          bool        `json:"is_airburst"`
	CraterDiameterM   float64     `json:"crater_diameter_m"`
	DamageRadiusKm    float64     `json:"damage_radius_km"`
	DamageLevel       DamageLevel `json:"damage_level"`
	Description       string      `json:"damage_description"`
}

// EstimateImpact computes mass, kinetic energy, airburst/ground-impact
// classification, crater size, and damage severity for an impactor.
// The function is pure: identical inputs yield identical outputs.
func EstimateImpact(imp Impactor) (ImpactEstimate, error) {
	imp = imp.withDefaults()
	if err := imp.validate(); err != nil {
		return ImpactEstimate{}, err
	}

	radiusM := imp.DiameterM / 2
	velocityMS := imp.VelocityKmS * 1000

	massKg := (4.0 / 3.0) * math.Pi * radiusM * radiusM * radiusM * imp.DensityKgM3
	energyJ := 0.5 * massKg * velocityMS * velocityMS
	energyMt := energyJ / JoulesPerMegatonTNT

	dynamicPressure := 0.5 * seaLevelAirDensityKgM3 * velocityMS * velocityMS
	airburst := dynamicPressure > breakupStrengthPa && imp.DiameterM < airburstMaxDiameterM

	est := ImpactEstimate{
		MassKg:            massKg,
		EnergyJoules:      energyJ,
		EnergyMegatonsTNT: energyMt,
		Airburst:          airburst,
		DamageLevel:       deriveDamageLevel(energyMt),
	}

	if airburst {
		est.CraterDiameterM = 0
		est.DamageRadiusKm = math.Pow(energyMt, 0.33) * 2
		est.Description = "airburst"
		return est, nil
	}

	est.CraterDiameterM = 1.161 *
		math.Pow(imp.GravityMS2, -0.22) *
		math.Pow(velocityMS, 0.44) *
		math.Pow(massKg/imp.TargetDensityKgM3, 0.333)
	est.DamageRadiusKm = est.CraterDiameterM / 500
	est.Description = "ground impact"
	return est, nil
}

// deriveDamageLevel maps impact energy to a severity tier.
// Boundaries are inclusive-lower, exclusive-upper; the final tier is open.
func deriveDamageLevel(energyMt float64) DamageLevel {
	switch {
	case energyMt < 0.1:
		return DamageNegligible
	case energyMt < 10:
		return DamageLocal
	case energyMt < 1000:
		return DamageRegional
	default:
		return DamageGlobal
	}
}
