package horizons

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
)

const vectorsBody = `*******************************************************************************
 Revised: Apr 22, 2021              433 Eros                              2000433
*******************************************************************************
$$SOE
2460676.500000000 = A.D. 2025-Jan-01 00:00:00.0000 TDB
 X = 1.513837E-01 Y =-9.257214E-01 Z = 2.529864E-05
 VX= 1.539010E-02 VY= 2.468558E-03 VZ=-1.873412E-07
2460677.500000000 = A.D. 2025-Jan-02 00:00:00.0000 TDB
 X = 1.667640E-01 Y =-9.232130E-01 Z = 2.510794E-05
 VX= 1.536585E-02 VY= 2.548250E-03 VZ=-1.940774E-07
$$EOE
*******************************************************************************
`

func TestParseVectors(t *testing.T) {
	t.Run("parses epochs and converts units", func(t *testing.T) {
		points := ParseVectors(vectorsBody)
		require.Len(t, points, 2)

		first := points[0]
		assert.Equal(t, 2460676.5, first.EpochJD)
		assert.InDelta(t, 1.513837e-01*domain.AUKilometers, first.Position.X, 1e-6)
		assert.InDelta(t, -9.257214e-01*domain.AUKilometers, first.Position.Y, 1e-6)
		assert.InDelta(t, 2.529864e-05*domain.AUKilometers, first.Position.Z, 1e-6)
		assert.InDelta(t, 1.539010e-02*domain.AUKilometers/DaySeconds, first.Velocity.X, 1e-9)

		assert.Equal(t, 2460677.5, points[1].EpochJD)
	})

	t.Run("drops a block missing its position row", func(t *testing.T) {
		body := "$$SOE\n2460676.500000000 = A.D. 2025-Jan-01 00:00:00.0000 TDB\n" +
			"2460677.500000000 = A.D. 2025-Jan-02 00:00:00.0000 TDB\n" +
			" X = 1.0 Y = 2.0 Z = 2.0\n$$EOE\n"

		points := ParseVectors(body)
		require.Len(t, points, 1)
		assert.Equal(t, 2460677.5, points[0].EpochJD)
		assert.InDelta(t, 3.0*domain.AUKilometers, points[0].Position.Norm(), 1e-6)
	})

	t.Run("no table markers yields nothing", func(t *testing.T) {
		assert.Empty(t, ParseVectors("API error: cannot resolve object"))
	})

	t.Run("velocity row is optional", func(t *testing.T) {
		body := "$$SOE\n2460676.500000000 = A.D. 2025-Jan-01 00:00:00.0000 TDB\n" +
			" X = 1.0 Y = 0.0 Z = 0.0\n$$EOE\n"

		points := ParseVectors(body)
		require.Len(t, points, 1)
		assert.Equal(t, domain.Vec3{}, points[0].Velocity)
	})
}

func TestVectors(t *testing.T) {
	t.Run("requests and parses an ephemeris", func(t *testing.T) {
		var query map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = map[string]string{
				"COMMAND":    r.URL.Query().Get("COMMAND"),
				"EPHEM_TYPE": r.URL.Query().Get("EPHEM_TYPE"),
				"CENTER":     r.URL.Query().Get("CENTER"),
				"STEP_SIZE":  r.URL.Query().Get("STEP_SIZE"),
			}
			fmt.Fprint(w, vectorsBody)
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, time.Second, slog.New(slog.DiscardHandler))
		points, err := client.Vectors(context.Background(), "433", "2025-01-01", "2025-12-31", "1 d")
		require.NoError(t, err)
		assert.Len(t, points, 2)

		assert.Equal(t, "433", query["COMMAND"])
		assert.Equal(t, "VECTORS", query["EPHEM_TYPE"])
		assert.Equal(t, DefaultCenter, query["CENTER"])
		assert.Equal(t, "1d", query["STEP_SIZE"], "spaces are stripped from the step")
	})

	t.Run("unresolvable object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "No matches found.")
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, time.Second, slog.New(slog.DiscardHandler))
		_, err := client.Vectors(context.Background(), "nonsense", "2025-01-01", "2025-12-31", "1d")
		require.ErrorIs(t, err, ErrNoVectors)
	})

	t.Run("closest approach over parsed vectors", func(t *testing.T) {
		points := ParseVectors(vectorsBody)
		res, err := domain.ClosestApproach(points, 0.001*domain.AUKilometers)
		require.NoError(t, err)

		assert.Equal(t, 2460676.5, res.MinEpochJD)
		assert.False(t, res.Intersects)
	})
}
