// Command genmock generates the mock NeoWs feed fixture used by the pipeline
// test suite. It runs the rows through the actual domain assessment so the
// printed stats match real pipeline behavior, making it easy to update test
// assertions when the model changes.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/neo_feed_250814.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// Close approaches for the fixture week. Diameters and velocities follow the
// NeoWs catalog entries for these objects; MOIDs are left blank where the feed
// itself omits them.
var fixtureRows = []domain.RawFeedRow{
	{
		NeoRefID: "3542519", Name: "(2010 PK9)", ApproachDate: "2025-08-14",
		DiameterMinM: "110", DiameterMaxM: "250", VelocityKmS: "19.54",
		MissDistanceKm: "20500000", Hazardous: true, OrbitingBody: "Earth",
	},
	{
		NeoRefID: "2099942", Name: "99942 Apophis (2004 MN4)", ApproachDate: "2025-08-15",
		DiameterMinM: "310", DiameterMaxM: "340", VelocityKmS: "7.42",
		MissDistanceKm: "31700000", MOIDAU: "0.000254", Hazardous: true, OrbitingBody: "Earth",
	},
	{
		NeoRefID: "3879345", Name: "(2019 VC)", ApproachDate: "2025-08-15",
		DiameterMinM: "8", DiameterMaxM: "18", VelocityKmS: "12.3",
		MissDistanceKm: "5400000", MOIDAU: "0.04", OrbitingBody: "Earth",
	},
	{
		NeoRefID: "54016433", Name: "(2020 SW)", ApproachDate: "2025-08-16",
		DiameterMinM: "40", DiameterMaxM: "90", VelocityKmS: "12.0",
		MissDistanceKm: "890000", OrbitingBody: "Earth",
	},
	{
		NeoRefID: "54339874", Name: "(2023 BU)", ApproachDate: "2025-08-17",
		DiameterMinM: "4", DiameterMaxM: "9", VelocityKmS: "18.44",
		MissDistanceKm: "9960", MOIDAU: "0.0009", OrbitingBody: "Earth",
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the raw feed JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fix the clock so AssessedAt timestamps in the stats are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.August, 18, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	events, err := assessAll(fixtureRows)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, fixtureRows); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d rows)", *out, len(fixtureRows))

	printStats(events)
	return nil
}

func assessAll(rows []domain.RawFeedRow) ([]domain.HazardEvent, error) {
	opts := domain.AssessOptions{MOIDThresholdAU: 0.001}
	events := make([]domain.HazardEvent, 0, len(rows))

	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row %s: %w", row.NeoRefID, err)
		}
		rec, err := domain.ParseRawRecord(domain.RawRecord{Value: data, Source: "mock"})
		if err != nil {
			return nil, fmt.Errorf("parse row %s: %w", row.NeoRefID, err)
		}
		event, err := domain.AssessRecord(rec, opts)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(events []domain.HazardEvent) {
	levels := map[domain.DamageLevel]int{}
	sources := map[string]int{}
	airbursts, intersects := 0, 0
	for i := range events {
		e := &events[i]
		levels[e.Impact.DamageLevel]++
		sources[e.MOIDSource]++
		if e.Impact.Airburst {
			airbursts++
		}
		if e.MOID != nil && e.MOID.Intersects {
			intersects++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(events))
	fmt.Printf("By damage level: negligible=%d, local=%d, regional=%d, global=%d\n",
		levels[domain.DamageNegligible], levels[domain.DamageLocal],
		levels[domain.DamageRegional], levels[domain.DamageGlobal])
	fmt.Printf("Airbursts: %d\n", airbursts)
	fmt.Printf("MOID sources: feed=%d, missing=%d\n", sources["feed"], sources["missing"])
	fmt.Printf("Intersecting orbits (MOID <= 0.001 AU): %d\n", intersects)

	for i := range events {
		e := &events[i]
		fmt.Printf("  %-28s E=%8.2f Mt  %-10s crater=%.0f m\n",
			e.Name, e.Impact.EnergyMegatonsTNT, e.Impact.DamageLevel, e.Impact.CraterDiameterM)
	}
}
