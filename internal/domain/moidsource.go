package domain

import (
	"context"
	"log/slog"
)

// MOIDSource resolves an Earth MOID for a small body by designation.
type MOIDSource interface {
	// EarthMOID returns the MOID in AU, or nil when the provider has no
	// value for the designation.
	EarthMOID(ctx context.Context, designation string) (*float64, error)
}

// EnrichWithMOID fills a record's MOID from a lookup source when the feed row
// did not carry one. If source is nil, the lookup fails, or the provider has
// no value, the record is returned unchanged (graceful degradation).
func EnrichWithMOID(ctx context.Context, rec NEORecord, source MOIDSource, logger *slog.Logger) NEORecord {
	if source == nil || rec.MOIDAU != nil {
		return rec
	}

	designation := rec.NeoRefID
	if designation == "" {
		designation = rec.Name
	}
	if designation == "" {
		return rec
	}

	moid, err := source.EarthMOID(ctx, designation)
	if err != nil {
		logger.Warn("moid lookup failed",
			"record_id", rec.ID,
			"designation", designation,
			"error", err,
		)
		return rec
	}
	if moid != nil {
		rec.MOIDAU = moid
		rec.MOIDSource = "sbdb"
	}
	return rec
}
