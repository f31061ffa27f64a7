// Package supplier is an optional HTTP client for an external
// ingredient supplier, consulted by refill operations before they fall
// back to an immediate local refill-to-capacity. Grounded on the
// teacher project's internal/station/remote_station.go HTTP client
// shape (timeout, JSON body, trace id header).
package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"industrial-4.0-demo/internal/util"
)

// Client calls an external supplier endpoint to request a delivery for
// one ingredient at one station.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// New builds a Client. An empty endpoint disables the supplier: every
// call to RequestDelivery then returns ErrDisabled immediately, and
// callers should refill locally instead.
func New(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

// ErrDisabled is returned by RequestDelivery when no supplier endpoint
// is configured.
var ErrDisabled = fmt.Errorf("supplier: no endpoint configured")

type deliveryRequest struct {
	StationID  int    `json:"station_id"`
	Ingredient string `json:"ingredient"`
	Units      int    `json:"units"`
}

type deliveryResponse struct {
	Delivered int    `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// RequestDelivery asks the supplier for units of ingredient at
// stationID, returning the number actually delivered.
func (c *Client) RequestDelivery(ctx context.Context, stationID int, ingredient string, units int) (int, error) {
	if c.endpoint == "" {
		return 0, ErrDisabled
	}

	logger := c.logger
	if traceID, ok := util.TraceIDFromContext(ctx); ok {
		logger = logger.With("trace_id", traceID)
	}

	body, _ := json.Marshal(deliveryRequest{StationID: stationID, Ingredient: ingredient, Units: units})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/deliver", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID, ok := util.TraceIDFromContext(ctx); ok {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("supplier request failed", "error", err, "station_id", stationID, "ingredient", ingredient)
		return 0, fmt.Errorf("supplier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("supplier returned %s", resp.Status)
	}

	var out deliveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode supplier response: %w", err)
	}
	if out.Error != "" {
		return out.Delivered, fmt.Errorf("supplier error: %s", out.Error)
	}
	return out.Delivered, nil
}
