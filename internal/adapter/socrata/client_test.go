package socrata

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meteoriteBody = `[
  {"id": "1", "name": "Aachen", "nametype": "Valid", "recclass": "L5", "mass": "21",
   "year": "1880-01-01T00:00:00.000", "reclat": "50.775000", "reclong": "6.083330"},
  {"id": "2", "name": "Aarhus", "nametype": "Valid", "recclass": "H6", "mass": "720",
   "year": "1951-01-01T00:00:00.000",
   "geolocation": {"type": "Point", "coordinates": [10.23333, 56.18333]}}
]`

func newTestClient(srv *httptest.Server, token string) *Client {
	return NewClient(srv.URL, token, time.Second, slog.New(slog.DiscardHandler))
}

func TestFetchMeteorites(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(meteoriteBody))
	}))
	defer server.Close()

	records, err := newTestClient(server, "tok-123").FetchMeteorites(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"500"}, gotQuery["$limit"])
	assert.Equal(t, []string{"tok-123"}, gotQuery["$$app_token"])

	assert.Equal(t, "Aachen", records[0].Name)
	assert.Equal(t, "1880", records[0].Year)
	require.NotNil(t, records[1].Lat)
	assert.InDelta(t, 56.18333, *records[1].Lat, 1e-9)
}

func TestFetchMeteorites_NoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("$$app_token"))
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	records, err := newTestClient(server, "").FetchMeteorites(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchMeteorites_HTMLErrorPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html><body>maintenance</body></html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server, "").FetchMeteorites(context.Background(), 10)
	assert.ErrorContains(t, err, "HTML response")
}

func TestFetchMeteorites_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server, "").FetchMeteorites(context.Background(), 10)
	assert.ErrorContains(t, err, "status 429")
}
