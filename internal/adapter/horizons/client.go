package horizons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// DaySeconds converts AU/day velocities to km/s together with AUKilometers.
const DaySeconds = 86400.0

// DefaultCenter is Earth's geocenter in Horizons notation.
const DefaultCenter = "500@0"

// ErrNoVectors is returned when a Horizons response contains no parseable
// ephemeris table, typically because the object could not be resolved.
var ErrNoVectors = errors.New("no ephemeris vectors in horizons response")

// Client fetches text-format VECTORS ephemerides from the JPL Horizons API.
type Client struct {
	baseURL    string
	center     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Horizons client centered on Earth's geocenter.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		center:     DefaultCenter,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Vectors requests an ephemeris for a Horizons COMMAND identifier over
// [start, stop] with the given step (e.g. "1d"), and returns the points in
// table order with positions in km and velocities in km/s.
func (c *Client) Vectors(ctx context.Context, command, start, stop, step string) ([]domain.EphemerisPoint, error) {
	params := url.Values{
		"format":     {"text"},
		"COMMAND":    {command},
		"EPHEM_TYPE": {"VECTORS"},
		"CENTER":     {c.center},
		"START_TIME": {start},
		"STOP_TIME":  {stop},
		// Horizons rejects step sizes containing spaces ("1 d").
		"STEP_SIZE": {strings.ReplaceAll(step, " ", "")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizons request for %q: %w", command, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read horizons response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("horizons API error for %q: status %d: %s", command, resp.StatusCode, truncate(body, 200))
	}

	points := ParseVectors(string(body))
	if len(points) == 0 {
		return nil, fmt.Errorf("horizons %q: %w", command, ErrNoVectors)
	}

	c.logger.Debug("horizons vectors fetched", "command", command, "points", len(points))
	return points, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
