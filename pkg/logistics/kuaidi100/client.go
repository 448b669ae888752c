package kuaidi100

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents a Kuaidi100 tracking API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Kuaidi100 client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// sign computes the request signature: the MD5 of the parameter JSON
// concatenated with the customer id and the key, hex-encoded uppercase.
func (c *Client) sign(param string) string {
	sum := md5.Sum([]byte(param + c.config.Customer + c.config.Key))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// Track queries the route of one shipment. Events come back oldest
// first.
func (c *Client) Track(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	if req.CarrierCode == "" || req.TrackingNo == "" {
		return nil, ErrInvalidRequest
	}
	if !IsSupportedCarrier(req.CarrierCode) {
		return nil, ErrUnknownCarrier
	}

	param, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query param: %w", err)
	}

	form := url.Values{}
	form.Set("customer", c.config.Customer)
	form.Set("sign", c.sign(string(param)))
	form.Set("param", string(param))

	endpoint := fmt.Sprintf("%s/poll/query.do", c.config.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrQueryFailed, resp.StatusCode)
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if raw.Status != "200" {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, raw.Message)
	}

	state, ok := stateNames[raw.State]
	if !ok {
		state = "unknown"
	}

	// Upstream lists the newest scan first; flip to chronological order.
	events := make([]TrackEvent, 0, len(raw.Data))
	for i := len(raw.Data) - 1; i >= 0; i-- {
		events = append(events, TrackEvent{
			Time:        raw.Data[i].Time,
			Description: raw.Data[i].Context,
		})
	}

	return &TrackResult{
		CarrierCode: raw.Com,
		TrackingNo:  raw.Nu,
		State:       state,
		Events:      events,
	}, nil
}
