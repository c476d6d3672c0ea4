package sbdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
)

// OrbitSummary is the subset of a JPL Small-Body Database record the
// pipeline cares about: identity, Earth MOID, and the classical elements.
type OrbitSummary struct {
	FullName string
	MOIDAU   *float64
	Elements map[string]string // e, i, om, w, q, a, ma, epoch when present
}

// Client implements domain.MOIDSource against the JPL SBDB API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an SBDB lookup client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// EarthMOID resolves the Earth MOID (AU) for a designation. A found object
// without a MOID yields (nil, nil); lookup failures are errors.
func (c *Client) EarthMOID(ctx context.Context, designation string) (*float64, error) {
	summary, err := c.Lookup(ctx, designation)
	if err != nil {
		return nil, err
	}
	return summary.MOIDAU, nil
}

// Lookup queries SBDB with an sstr search string and extracts the orbit block.
func (c *Client) Lookup(ctx context.Context, sstr string) (OrbitSummary, error) {
	params := url.Values{"sstr": {sstr}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return OrbitSummary{}, fmt.Errorf("create request: %w", err)
	}

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues("sbdb").Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues("sbdb", "error").Inc()
		return OrbitSummary{}, fmt.Errorf("sbdb request for %q: %w", sstr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.APIRequests.WithLabelValues("sbdb", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return OrbitSummary{}, fmt.Errorf("sbdb API error for %q: status %d: %s", sstr, resp.StatusCode, body)
	}
	c.metrics.APIRequests.WithLabelValues("sbdb", "success").Inc()

	var payload sbdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return OrbitSummary{}, fmt.Errorf("decode sbdb response: %w", err)
	}

	return summarize(payload), nil
}

// summarize pulls the orbit block, tolerating the two shapes SBDB returns:
// a top-level "orbit" key or one nested under "object".
func summarize(payload sbdbResponse) OrbitSummary {
	orbit := payload.Orbit
	if orbit == nil {
		orbit = payload.Object.Orbit
	}

	summary := OrbitSummary{
		FullName: payload.Object.FullName,
		Elements: map[string]string{},
	}
	if orbit == nil {
		return summary
	}

	for _, key := range []string{"e", "i", "om", "w", "q", "a", "ma", "epoch"} {
		if v, ok := stringValue(orbit[key]); ok {
			summary.Elements[key] = v
		}
	}

	summary.MOIDAU = extractMOID(orbit)
	return summary
}

// extractMOID searches the orbit block for a MOID value under its common key
// names, falling back to any key containing "moid".
func extractMOID(orbit map[string]json.RawMessage) *float64 {
	for _, key := range []string{"moid", "MOID"} {
		if v := floatValue(orbit[key]); v != nil {
			return v
		}
	}
	for key, raw := range orbit {
		if strings.Contains(strings.ToLower(key), "moid") {
			if v := floatValue(raw); v != nil {
				return v
			}
		}
	}
	return nil
}

// floatValue parses a raw JSON value that may be a number or a numeric string.
func floatValue(raw json.RawMessage) *float64 {
	s, ok := stringValue(raw)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// SBDB API response types. The orbit block's value types vary between
// releases, so it stays raw and values are picked out per key.

type sbdbResponse struct {
	Object struct {
		FullName string                     `json:"fullname"`
		Orbit    map[string]json.RawMessage `json:"orbit"`
	} `json:"object"`
	Orbit map[string]json.RawMessage `json:"orbit"`
}
