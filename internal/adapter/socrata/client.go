// Package socrata fetches the NASA Meteorite Landings dataset from the
// data.nasa.gov Socrata API.
package socrata

import (
	"bytes"
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

// Client is a Socrata dataset client.
type Client struct {
	baseURL    string
	appToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Socrata client. The app token is optional; without one
// requests share the anonymous rate limit pool.
func NewClient(baseURL, appToken string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		appToken:   appToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchMeteorites returns up to limit normalized meteorite landings.
func (c *Client) FetchMeteorites(ctx context.Context, limit int) ([]domain.MeteoriteRecord, error) {
	params := url.Values{"$limit": {strconv.Itoa(limit)}}
	if c.appToken != "" {
		params.Set("$$app_token", c.appToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("socrata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read socrata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("socrata API error: status %d", resp.StatusCode)
	}
	// Socrata serves HTML error pages with a 200 status during outages.
	if isHTML(body) {
		return nil, fmt.Errorf("socrata API error: HTML response")
	}

	var rows []domain.RawMeteoriteRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode socrata response: %w", err)
	}

	records := make([]domain.MeteoriteRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.NormalizeMeteorite(row))
	}

	c.logger.Debug("meteorite records fetched", "count", len(records))
	return records, nil
}

func isHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<!doctype html")) ||
		bytes.HasPrefix(trimmed, []byte("<html"))
}
