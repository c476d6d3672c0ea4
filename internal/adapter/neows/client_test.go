package neows

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
)

const feedBody = `{
  "near_earth_objects": {
    "2025-08-01": [
      {
        "neo_reference_id": "3542519",
        "name": "(2010 PK9)",
        "is_potentially_hazardous_asteroid": true,
        "estimated_diameter": {
          "meters": {"estimated_diameter_min": 110.8, "estimated_diameter_max": 247.8}
        },
        "close_approach_data": [
          {
            "close_approach_date": "2025-08-01",
            "relative_velocity": {"kilometers_per_second": "19.36"},
            "miss_distance": {"kilometers": "4314123.5"},
            "orbiting_body": "Earth"
          },
          {
            "close_approach_date": "2025-08-02",
            "relative_velocity": {"kilometers_per_second": "18.90"},
            "miss_distance": {"kilometers": "5000000.0"},
            "orbiting_body": "Earth"
          }
        ]
      }
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, time.Second, slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())
}

func TestFetchFeed(t *testing.T) {
	t.Run("flattens one record per close approach", func(t *testing.T) {
		var gotQuery map[string]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"start_date": r.URL.Query().Get("start_date"),
				"end_date":   r.URL.Query().Get("end_date"),
				"api_key":    r.URL.Query().Get("api_key"),
			}
			fmt.Fprint(w, feedBody)
		})

		start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		stop := time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC)

		records, err := client.FetchFeed(context.Background(), start, stop)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "2025-08-01", gotQuery["start_date"])
		assert.Equal(t, "2025-08-07", gotQuery["end_date"])
		assert.Equal(t, "test-key", gotQuery["api_key"])

		rec, err := domain.ParseRawRecord(records[0])
		require.NoError(t, err)
		assert.Equal(t, "3542519", rec.NeoRefID)
		assert.Equal(t, "(2010 PK9)", rec.Name)
		assert.True(t, rec.Hazardous)
		assert.InDelta(t, (110.8+247.8)/2, rec.DiameterM, 1e-9)
		assert.Equal(t, 19.36, rec.VelocityKmS)
		assert.Nil(t, rec.MOIDAU) // feed rows carry no orbital data

		second, err := domain.ParseRawRecord(records[1])
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), second.ApproachDate)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "API_KEY_INVALID", http.StatusForbidden)
		})

		_, err := client.FetchFeed(context.Background(), time.Now(), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<!doctype html>")
		})

		_, err := client.FetchFeed(context.Background(), time.Now(), time.Now())
		require.Error(t, err)
	})
}

func TestFeedExtractor(t *testing.T) {
	t.Run("pages the window in chunks and then drains", func(t *testing.T) {
		var windows []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			windows = append(windows, r.URL.Query().Get("start_date")+".."+r.URL.Query().Get("end_date"))
			if r.URL.Query().Get("start_date") == "2025-08-01" {
				fmt.Fprint(w, feedBody)
				return
			}
			fmt.Fprint(w, `{"near_earth_objects":{}}`)
		})

		start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		stop := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
		ext := NewFeedExtractor(client, start, stop, 7)

		batch, err := ext.ExtractBatch(context.Background(), 1)
		require.NoError(t, err)
		assert.Len(t, batch, 1)

		batch, err = ext.ExtractBatch(context.Background(), 50)
		require.NoError(t, err)
		assert.Len(t, batch, 1) // second record from the buffered first chunk

		batch, err = ext.ExtractBatch(context.Background(), 50)
		require.NoError(t, err)
		assert.Empty(t, batch) // window exhausted

		assert.Equal(t, []string{"2025-08-01..2025-08-07", "2025-08-08..2025-08-10"}, windows)
	})

	t.Run("fetch errors do not advance the cursor", func(t *testing.T) {
		var calls int
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls++
			if calls == 1 {
				http.Error(w, "over quota", http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, feedBody)
		})

		start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		ext := NewFeedExtractor(client, start, start, 7)

		_, err := ext.ExtractBatch(context.Background(), 10)
		require.Error(t, err)

		batch, err := ext.ExtractBatch(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, batch, 2)
	})
}
