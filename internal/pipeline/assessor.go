package pipeline

import (
	"context"
	"log/slog"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// HazardAssessor implements Assessor using the domain parse and assessment
// functions, with optional MOID enrichment for rows the feed leaves blank.
type HazardAssessor struct {
	moidSource domain.MOIDSource
	opts       domain.AssessOptions
	logger     *slog.Logger
}

// NewAssessor creates a HazardAssessor. Pass a nil moidSource to disable
// MOID enrichment.
func NewAssessor(moidSource domain.MOIDSource, opts domain.AssessOptions, logger *slog.Logger) *HazardAssessor {
	return &HazardAssessor{
		moidSource: moidSource,
		opts:       opts,
		logger:     logger,
	}
}

func (a *HazardAssessor) Assess(ctx context.Context, raw domain.RawRecord) (domain.HazardEvent, error) {
	rec, err := domain.ParseRawRecord(raw)
	if err != nil {
		return domain.HazardEvent{}, err
	}

	rec = domain.EnrichWithMOID(ctx, rec, a.moidSource, a.logger)

	return domain.AssessRecord(rec, a.opts)
}
