package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/avdeevs/mediavault/internal/models"
	"github.com/sethvargo/go-retry"
)

const (
	recordsPath     = "/api/records"
	defaultCacheTTL = 30 * time.Second
	requestTimeout  = 12 * time.Second
)

// HTTPClient fetches remote records over JSON/HTTP with a short client-side
// cache and bounded exponential retry on transient failures.
type HTTPClient struct {
	baseURL  string
	token    string
	client   *http.Client
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   []*models.ArtifactRecord
	cachedAt time.Time
}

// NewHTTPClient creates a fetcher for the given endpoint. token is an opaque
// bearer token attached to every request; it may be empty.
func NewHTTPClient(baseURL string, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		token:    token,
		client:   &http.Client{Timeout: requestTimeout},
		cacheTTL: defaultCacheTTL,
	}
}

// recordPayload is the wire shape of one remote record.
type recordPayload struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

func (c *HTTPClient) FetchRecords(ctx context.Context, forceRefresh bool) ([]*models.ArtifactRecord, error) {
	if !forceRefresh {
		if cached := c.fromCache(); cached != nil {
			return cached, nil
		}
	}

	var payload []recordPayload
	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := c.fetchOnce(ctx)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]*models.ArtifactRecord, 0, len(payload))
	for _, p := range payload {
		records = append(records, &models.ArtifactRecord{
			Id:              p.ID,
			Name:            p.Name,
			Kind:            models.Kind(p.Kind),
			ContentType:     p.ContentType,
			SizeBytes:       p.SizeBytes,
			DurationSeconds: p.DurationSeconds,
			CreatedAt:       p.CreatedAt,
			Uploaded:        true,
		})
	}

	c.mu.Lock()
	c.cached = records
	c.cachedAt = time.Now()
	c.mu.Unlock()

	return records, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context) ([]recordPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+recordsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// network errors are worth retrying
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("remote returned %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("remote returned %s: %s", resp.Status, string(b))
	}

	var payload []recordPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode remote records: %w", err)
	}
	return payload, nil
}

func (c *HTTPClient) fromCache() []*models.ArtifactRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil || time.Since(c.cachedAt) > c.cacheTTL {
		return nil
	}
	return c.cached
}

var _ Fetcher = (*HTTPClient)(nil)
