// Package locationpush sends accepted location samples to the order API
// over HTTP.
package locationpush

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

type locationPayload struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracyMeters"`
	CapturedAt     time.Time `json:"capturedAt"`
}

// Pusher implements tracker.LocationPusher against the
// PUT /api/v1/orders/:id/location endpoint.
type Pusher struct {
	client  *resty.Client
	baseURL string
}

// NewPusher creates a pusher targeting the given API base URL,
// e.g. "http://localhost:8080".
func NewPusher(baseURL string) (*Pusher, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Pusher{client: client, baseURL: baseURL}, nil
}

// Push uploads one sample for the order. Non-2xx responses are errors so the
// tracker can log and, for manual refreshes, report them.
func (p *Pusher) Push(ctx context.Context, orderID int64, sample kernel.LocationSample) error {
	payload := locationPayload{
		Lat:            sample.Point.Lat(),
		Lng:            sample.Point.Lng(),
		AccuracyMeters: sample.AccuracyMeters,
		CapturedAt:     sample.CapturedAt,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(payload).
		Put(fmt.Sprintf("%s/api/v1/orders/%d/location", p.baseURL, orderID))
	if err != nil {
		return fmt.Errorf("push location for order %d: %w", orderID, err)
	}

	if resp.IsError() {
		return fmt.Errorf("push location for order %d: unexpected status %d", orderID, resp.StatusCode())
	}

	return nil
}
