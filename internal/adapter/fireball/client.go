package fireball

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
)

// Client fetches atmospheric-entry events from the JPL Fireball API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Fireball API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch returns up to limit normalized fireball events, newest first (the
// API's default ordering).
func (c *Client) Fetch(ctx context.Context, limit int) ([]domain.FireballEvent, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fireball request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fireball API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode fireball response: %w", err)
	}

	events := make([]domain.FireballEvent, 0, len(payload.Data))
	for _, row := range payload.Data {
		events = append(events, domain.NormalizeFireball(mapRow(payload.Fields, row)))
	}

	c.logger.Debug("fireball events fetched", "count", len(events))
	return events, nil
}

// mapRow zips the response's parallel fields/data arrays into a named row.
// Null cells stay empty strings.
func mapRow(fields []string, row []*string) domain.RawFireballRow {
	byName := make(map[string]string, len(fields))
	for i, name := range fields {
		if i < len(row) && row[i] != nil {
			byName[name] = *row[i]
		}
	}
	return domain.RawFireballRow{
		Date:        byName["date"],
		EnergyKt:    byName["energy"],
		ImpactE:     byName["impact-e"],
		Lat:         byName["lat"],
		LatDir:      byName["lat-dir"],
		Lon:         byName["lon"],
		LonDir:      byName["lon-dir"],
		AltitudeKm:  byName["alt"],
		VelocityKmS: byName["vel"],
	}
}

// Fireball API response: column names and row data as parallel arrays.
type response struct {
	Count  json.Number `json:"count"`
	Fields []string    `json:"fields"`
	Data   [][]*string `json:"data"`
}
