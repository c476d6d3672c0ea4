// Package sink writes assessed events to local files: hazard assessments and
// meteorite landings as CSV, fireball events as GeoJSON.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

var hazardHeader = []string{
	"id", "name", "close_approach_date", "diameter_m", "velocity_km_s",
	"miss_distance_km", "energy_megatons_tnt", "crater_diameter_m",
	"damage_radius_km", "damage_level", "airburst", "moid_au", "moid_km",
	"intersects",
}

// CSVWriter appends hazard assessments to a CSV file. Safe for concurrent
// use. The header row is written once, when the file is created or empty.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVWriter opens (or creates) the CSV file at path for appending.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv sink: %w", err)
	}

	w := &CSVWriter{file: file, w: csv.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat csv sink: %w", err)
	}
	if info.Size() == 0 {
		if err := w.w.Write(hazardHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.w.Flush()
		if err := w.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return w, nil
}

// LoadBatch appends one row per hazard event and flushes.
func (w *CSVWriter) LoadBatch(ctx context.Context, events []domain.HazardEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, event := range events {
		if err := w.w.Write(hazardRow(event)); err != nil {
			return fmt.Errorf("write csv row %s: %w", event.ID, err)
		}
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("flush csv sink: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the underlying file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv sink: %w", err)
	}
	return w.file.Close()
}

func hazardRow(event domain.HazardEvent) []string {
	moidAU, moidKm, intersects := "", "", ""
	if event.MOID != nil {
		moidAU = formatFloat(event.MOID.MOIDAU)
		moidKm = formatFloat(event.MOID.MOIDKm)
		intersects = strconv.FormatBool(event.MOID.Intersects)
	}
	return []string{
		event.ID,
		event.Name,
		event.ApproachDate.Format("2006-01-02"),
		formatFloat(event.DiameterM),
		formatFloat(event.VelocityKmS),
		formatFloat(event.MissDistanceKm),
		formatFloat(event.Impact.EnergyMegatonsTNT),
		formatFloat(event.Impact.CraterDiameterM),
		formatFloat(event.Impact.DamageRadiusKm),
		string(event.Impact.DamageLevel),
		strconv.FormatBool(event.Impact.Airburst),
		moidAU,
		moidKm,
		intersects,
	}
}

// WriteMeteoriteCSV writes meteorite landings to a new CSV file at path,
// replacing any existing file.
func WriteMeteoriteCSV(path string, records []domain.MeteoriteRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create meteorite csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{"id", "name", "nametype", "recclass", "mass_g", "year", "reclat", "reclong"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write meteorite header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.ID, rec.Name, rec.NameType, rec.RecClass,
			formatOptional(rec.MassG), rec.Year,
			formatOptional(rec.Lat), formatOptional(rec.Lon),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write meteorite row %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush meteorite csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
