package sonosapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/strefethen/sonos-nowplaying-go/internal/apperrors"
)

// maxPayloadBytes bounds a zones response; a large household is a few hundred KB.
const maxPayloadBytes = 8 << 20

// Client fetches zone state from a node-sonos-http-api instance.
type Client struct {
	httpClient *http.Client
	zonesURL   string
	baseURL    string
}

// NewClient creates a client for zonesURL. baseURL is the bare API base
// (scheme://host) used as the last-resort album art prefix.
func NewClient(zonesURL, baseURL string, timeout time.Duration) *Client {
	return &Client{
		zonesURL: zonesURL,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ZonesURL returns the endpoint being polled.
func (c *Client) ZonesURL() string {
	return c.zonesURL
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchZones returns the raw /zones payload.
func (c *Client) FetchZones(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.zonesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build zones request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &TimeoutError{URL: c.zonesURL}
		}
		return nil, &UnreachableError{URL: c.zonesURL, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &UnreachableError{URL: c.zonesURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{URL: c.zonesURL, StatusCode: resp.StatusCode}
	}

	return payload, nil
}

// ToAppError maps transport failures to API error codes.
func ToAppError(err error) *apperrors.AppError {
	var timeoutErr *TimeoutError
	var unreachableErr *UnreachableError
	var statusErr *StatusError
	switch {
	case errors.As(err, &timeoutErr):
		return apperrors.NewUpstreamError(apperrors.ErrorCodeSonosTimeout, "Sonos API timed out", err)
	case errors.As(err, &unreachableErr):
		return apperrors.NewUpstreamError(apperrors.ErrorCodeSonosUnreachable, "Sonos API unreachable", err)
	case errors.As(err, &statusErr):
		return apperrors.NewUpstreamError(apperrors.ErrorCodeSonosRejected, statusErr.Error(), err)
	}
	return apperrors.EnsureAppError(err)
}
