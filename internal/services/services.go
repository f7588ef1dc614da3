// package services implements HTTP clients for the source and destination music services
//
// Spotify (source), YouTube Music via proxy (destination)
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/ytmigrate/internal/shared"
)

// Service is implemented by every music service client.
type Service interface {
	// Authenticate stores credentials used by subsequent requests.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Name returns the name of the service (e.g., "Spotify", "YouTube Music")
	Name() string
}

var (
	_ Service = (*SpotifyService)(nil)
	_ Service = (*YouTubeService)(nil)
)

// jsonRequest describes a single JSON round trip.
type jsonRequest struct {
	method  string
	url     string
	headers map[string]string
	body    any // marshalled when non-nil
	result  any // decoded when non-nil and the body is not empty
}

// doJSON performs req with client and maps non-2xx statuses onto shared errors.
//
// The proxy reports failures as {"detail": "..."}. The detail is included in the error when present.
func doJSON(ctx context.Context, client *http.Client, service string, req jsonRequest) error {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s request failed: %v", shared.ErrAPIRequest, service, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(service, resp.StatusCode, data)
	}

	if req.result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, req.result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func statusError(service string, status int, data []byte) error {
	sentinel := shared.ErrAPIRequest
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = shared.ErrNotAuthenticated
	case http.StatusNotFound:
		sentinel = shared.ErrPlaylistNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		sentinel = shared.ErrServiceUnavailable
	}

	var errResp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("%w: %s API error (status %d): %s", sentinel, service, status, errResp.Detail)
	}
	return fmt.Errorf("%w: %s API error: status %d", sentinel, service, status)
}

// IsNotFound reports whether err came from a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrPlaylistNotFound)
}
