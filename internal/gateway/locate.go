package gateway

import (
	"context"
	"encoding/json"

	"github.com/skydeck/skydeck/internal/weather"
)

// Locate resolves the host's approximate coordinates from its public
// address. The caller bounds the call with its own deadline; a refusal
// or unresolvable position comes back as a PermissionError, transport
// trouble as a NetworkError.
func (c *Client) Locate(ctx context.Context) (lat, lon float64, err error) {
	body, err := c.get(ctx, c.locateCB, c.opts.LocateBaseURL+"/json")
	if err != nil {
		return 0, 0, &weather.NetworkError{Op: "locate", Err: err}
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, 0, &weather.NetworkError{Op: "locate", Err: err}
	}

	if payload.Status != "success" {
		reason := payload.Message
		if reason == "" {
			reason = "position could not be determined"
		}
		return 0, 0, &weather.PermissionError{Reason: reason}
	}

	return payload.Lat, payload.Lon, nil
}
