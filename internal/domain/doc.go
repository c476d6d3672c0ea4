// Package domain models near-Earth-object hazard assessment.
//
// # Data Sources
//
// Catalog rows originate from NASA's NeoWs feed (close-approach records with
// estimated diameters and relative velocities), JPL's Small-Body Database
// (orbital elements and Earth MOID), and JPL Horizons (ephemeris vectors).
// The adapter layer flattens provider responses into flat JSON rows; this
// package parses those rows and runs the physical assessment.
//
// # Impact Model
//
// The estimator treats the impactor as a sphere of uniform bulk density
// (default 3000 kg/m³) and computes kinetic energy from the relative velocity
// at encounter. Energy is reported both in joules and in megatons of TNT
// (4.184e15 J per Mt).
//
// Atmospheric breakup uses a fixed-threshold heuristic: the body airbursts
// when the sea-level dynamic pressure 0.5·1.2·v² exceeds 10 MPa (a typical
// stony-asteroid strength) and the diameter is under 60 m. Larger bodies are
// assumed to survive to the ground regardless of dynamic pressure. These
// constants are empirical and carry no published uncertainty; treat them as
// model parameters, not physical truths.
//
// Ground impacts form a crater sized by the Holsapple–Housen gravity-regime
// scaling law:
//
//	D = 1.161 · g^-0.22 · v^0.44 · (m/ρ_target)^0.333
//
// with the target density defaulting to 2700 kg/m³ (crustal rock) and
// g = 9.81 m/s². Damage radius is crater/500 km for ground impacts and
// 2·E_mt^0.33 km for airbursts (empirical blast-wave scaling).
//
// Damage tiers by impact energy, inclusive-lower / exclusive-upper:
//
//	< 0.1 Mt        negligible
//	0.1 – 10 Mt     local
//	10 – 1000 Mt    regional
//	≥ 1000 Mt       global catastrophic
//
// # Orbit Intersection
//
// Two classifications are supported, chosen by whichever data a caller has:
// a minimum over a target-centered ephemeris series (Euclidean norm per
// point, ties broken by earliest epoch), or a precomputed MOID compared
// against an AU threshold. MOID kilometers use the exact IAU astronomical
// unit, 149 597 870.7 km.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of the record's key fields,
// so reprocessing the same catalog row produces the same ID and downstream
// consumers can deduplicate on replay.
package domain
