package neows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
)

// Client fetches close-approach records from NASA's NeoWs feed endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a NeoWs client. The API key and base URL are injected so
// credentials never live in code.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchFeed returns one flat RawRecord per close approach in [start, stop].
// The feed rejects windows longer than seven days; callers page accordingly.
func (c *Client) FetchFeed(ctx context.Context, start, stop time.Time) ([]domain.RawRecord, error) {
	params := url.Values{
		"start_date": {start.Format("2006-01-02")},
		"end_date":   {stop.Format("2006-01-02")},
		"api_key":    {c.apiKey},
	}

	began := time.Now()
	feed, err := c.doRequest(ctx, c.baseURL+"/feed?"+params.Encode())
	c.metrics.APIDuration.WithLabelValues("neows").Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues("neows", "error").Inc()
		return nil, err
	}
	c.metrics.APIRequests.WithLabelValues("neows", "success").Inc()

	fetchedAt := time.Now().UTC()
	var records []domain.RawRecord
	for _, objects := range feed.NearEarthObjects {
		for _, neo := range objects {
			for _, approach := range neo.CloseApproachData {
				row := flattenApproach(neo, approach)
				value, err := json.Marshal(row)
				if err != nil {
					return nil, fmt.Errorf("flatten neo %s: %w", neo.NeoReferenceID, err)
				}
				records = append(records, domain.RawRecord{
					Value:     value,
					Source:    "neows",
					FetchedAt: fetchedAt,
				})
			}
		}
	}

	c.logger.Debug("neows feed fetched",
		"start", start.Format("2006-01-02"),
		"stop", stop.Format("2006-01-02"),
		"records", len(records),
	)
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*feedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("neows feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	return &feed, nil
}

// flattenApproach produces the flat row the domain layer parses. Numeric
// diameters are re-serialized as strings to match the API's own convention
// for velocity and miss distance.
func flattenApproach(neo nearEarthObject, approach closeApproach) domain.RawFeedRow {
	return domain.RawFeedRow{
		NeoRefID:       neo.NeoReferenceID,
		Name:           neo.Name,
		ApproachDate:   approach.CloseApproachDate,
		DiameterMinM:   formatFloat(neo.EstimatedDiameter.Meters.Min),
		DiameterMaxM:   formatFloat(neo.EstimatedDiameter.Meters.Max),
		VelocityKmS:    approach.RelativeVelocity.KilometersPerSecond,
		MissDistanceKm: approach.MissDistance.Kilometers,
		MOIDAU:         neo.OrbitalData.MinimumOrbitIntersection,
		Hazardous:      neo.IsPotentiallyHazardous,
		OrbitingBody:   approach.OrbitingBody,
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NeoWs feed response types.

type feedResponse struct {
	NearEarthObjects map[string][]nearEarthObject `json:"near_earth_objects"`
}

type nearEarthObject struct {
	NeoReferenceID         string `json:"neo_reference_id"`
	Name                   string `json:"name"`
	IsPotentiallyHazardous bool   `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter      struct {
		Meters struct {
			Min float64 `json:"estimated_diameter_min"`
			Max float64 `json:"estimated_diameter_max"`
		} `json:"meters"`
	} `json:"estimated_diameter"`
	CloseApproachData []closeApproach `json:"close_approach_data"`
	OrbitalData       struct {
		MinimumOrbitIntersection string `json:"minimum_orbit_intersection"`
	} `json:"orbital_data"`
}

type closeApproach struct {
	CloseApproachDate string `json:"close_approach_date"`
	RelativeVelocity  struct {
		KilometersPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody string `json:"orbiting_body"`
}
