package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

// HTTPSource fetches usage snapshots from a collector endpoint that serves
// the accounts payload as JSON.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates an HTTP source for the given endpoint.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies the source.
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Fetch requests the current accounts payload.
func (s *HTTPSource) Fetch(ctx context.Context) (*models.AccountsPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usage endpoint returned %s", resp.Status)
	}

	var payload models.AccountsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode usage payload: %w", err)
	}
	return &payload, nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
