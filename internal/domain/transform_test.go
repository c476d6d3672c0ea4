package domain

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawRecord(t *testing.T) {
	fetchedAt := time.Date(2025, 8, 1, 6, 30, 0, 0, time.UTC)

	t.Run("full feed row", func(t *testing.T) {
		data := []byte(`{"neo_reference_id":"3542519","name":"(2010 PK9)","close_approach_date":"2025-08-04","est_diameter_min_m":"110.8","est_diameter_max_m":"247.8","velocity_km_s":"19.36","miss_distance_km":"4314123.5","moid_au":"0.0132","is_hazardous":true,"orbiting_body":"Earth"}`)
		raw := RawRecord{Value: data, Source: "neows", FetchedAt: fetchedAt}

		rec, err := ParseRawRecord(raw)
		require.NoError(t, err)

		assert.Equal(t, "3542519", rec.NeoRefID)
		assert.Equal(t, "(2010 PK9)", rec.Name)
		assert.Equal(t, time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), rec.ApproachDate)
		assert.InDelta(t, (110.8+247.8)/2, rec.DiameterM, 1e-9)
		assert.Equal(t, 19.36, rec.VelocityKmS)
		assert.Equal(t, 4314123.5, rec.MissDistanceKm)
		require.NotNil(t, rec.MOIDAU)
		assert.Equal(t, 0.0132, *rec.MOIDAU)
		assert.Equal(t, "feed", rec.MOIDSource)
		assert.True(t, rec.Hazardous)
		assert.Equal(t, "Earth", rec.OrbitingBody)
		assert.True(t, strings.HasPrefix(rec.ID, "neo-3542519-"))
		assert.Equal(t, data, rec.RawPayload)
	})

	t.Run("missing MOID stays absent", func(t *testing.T) {
		data := []byte(`{"neo_reference_id":"2099942","name":"99942 Apophis","close_approach_date":"2029-04-13","est_diameter_min_m":"310","est_diameter_max_m":"340","velocity_km_s":"7.42","moid_au":""}`)
		rec, err := ParseRawRecord(RawRecord{Value: data, FetchedAt: fetchedAt})

		require.NoError(t, err)
		assert.Nil(t, rec.MOIDAU)
		assert.Empty(t, rec.MOIDSource)
	})

	t.Run("one-sided diameter estimate", func(t *testing.T) {
		data := []byte(`{"neo_reference_id":"1","est_diameter_min_m":"","est_diameter_max_m":"80","velocity_km_s":"12"}`)
		rec, err := ParseRawRecord(RawRecord{Value: data, FetchedAt: fetchedAt})

		require.NoError(t, err)
		assert.Equal(t, 80.0, rec.DiameterM)
	})

	t.Run("malformed approach date falls back to fetch date", func(t *testing.T) {
		data := []byte(`{"neo_reference_id":"1","close_approach_date":"soon","est_diameter_min_m":"10","est_diameter_max_m":"20","velocity_km_s":"12"}`)
		rec, err := ParseRawRecord(RawRecord{Value: data, FetchedAt: fetchedAt})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), rec.ApproachDate)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawRecord(RawRecord{Value: []byte("{not json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw record")
	})

	t.Run("deterministic ID across replays", func(t *testing.T) {
		data := []byte(`{"neo_reference_id":"3542519","close_approach_date":"2025-08-04","est_diameter_min_m":"110.8","est_diameter_max_m":"247.8","velocity_km_s":"19.36"}`)

		first, err := ParseRawRecord(RawRecord{Value: data, FetchedAt: fetchedAt})
		require.NoError(t, err)
		second, err := ParseRawRecord(RawRecord{Value: data, FetchedAt: fetchedAt.Add(48 * time.Hour)})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})
}

func TestAssessRecord(t *testing.T) {
	frozen := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	opts := AssessOptions{MOIDThresholdAU: 0.001}

	t.Run("record with feed MOID", func(t *testing.T) {
		moid := 0.0004
		rec := NEORecord{
			ID:          "neo-1-abc",
			NeoRefID:    "1",
			Name:        "test object",
			DiameterM:   120,
			VelocityKmS: 20,
			MOIDAU:      &moid,
			MOIDSource:  "feed",
		}

		event, err := AssessRecord(rec, opts)
		require.NoError(t, err)

		assert.Equal(t, "neo-1-abc", event.ID)
		assert.False(t, event.Impact.Airburst)
		require.NotNil(t, event.MOID)
		assert.True(t, event.MOID.Intersects)
		assert.Equal(t, "feed", event.MOIDSource)
		assert.Equal(t, frozen, event.AssessedAt)
	})

	t.Run("record without MOID reports it missing", func(t *testing.T) {
		rec := NEORecord{ID: "neo-2-def", DiameterM: 50, VelocityKmS: 18}

		event, err := AssessRecord(rec, opts)
		require.NoError(t, err)

		assert.Nil(t, event.MOID)
		assert.Equal(t, "missing", event.MOIDSource)
		assert.True(t, event.Impact.Airburst)
	})

	t.Run("invalid physical parameters fail the assessment", func(t *testing.T) {
		rec := NEORecord{ID: "neo-3-ghi", DiameterM: 50, VelocityKmS: 0}

		_, err := AssessRecord(rec, opts)
		require.Error(t, err)

		var invalid *InvalidInputError
		assert.ErrorAs(t, err, &invalid)
	})
}

type stubMOIDSource struct {
	moid *float64
	err  error
}

func (s *stubMOIDSource) EarthMOID(_ context.Context, _ string) (*float64, error) {
	return s.moid, s.err
}

func TestEnrichWithMOID(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("fills a missing MOID from the source", func(t *testing.T) {
		moid := 0.02
		rec := NEORecord{ID: "neo-1", NeoRefID: "433"}

		got := EnrichWithMOID(context.Background(), rec, &stubMOIDSource{moid: &moid}, logger)

		require.NotNil(t, got.MOIDAU)
		assert.Equal(t, 0.02, *got.MOIDAU)
		assert.Equal(t, "sbdb", got.MOIDSource)
	})

	t.Run("keeps an existing feed MOID", func(t *testing.T) {
		existing := 0.01
		rec := NEORecord{ID: "neo-1", NeoRefID: "433", MOIDAU: &existing, MOIDSource: "feed"}
		other := 0.9

		got := EnrichWithMOID(context.Background(), rec, &stubMOIDSource{moid: &other}, logger)

		assert.Equal(t, 0.01, *got.MOIDAU)
		assert.Equal(t, "feed", got.MOIDSource)
	})

	t.Run("lookup failure degrades gracefully", func(t *testing.T) {
		rec := NEORecord{ID: "neo-1", NeoRefID: "433"}

		got := EnrichWithMOID(context.Background(), rec, &stubMOIDSource{err: errors.New("boom")}, logger)

		assert.Nil(t, got.MOIDAU)
		assert.Empty(t, got.MOIDSource)
	})

	t.Run("nil source is a no-op", func(t *testing.T) {
		rec := NEORecord{ID: "neo-1", NeoRefID: "433"}
		got := EnrichWithMOID(context.Background(), rec, nil, logger)
		assert.Nil(t, got.MOIDAU)
	})

	t.Run("no designation is a no-op", func(t *testing.T) {
		moid := 0.5
		rec := NEORecord{ID: "neo-1"}
		got := EnrichWithMOID(context.Background(), rec, &stubMOIDSource{moid: &moid}, logger)
		assert.Nil(t, got.MOIDAU)
	})
}
