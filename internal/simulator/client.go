package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Barton98/Energy-management-system/internal/models"
)

// Deliverer abstracts telemetry delivery so the loop can be tested
// against stubs.
type Deliverer interface {
	Send(ctx context.Context, r models.Reading) error
	SendBatch(ctx context.Context, rs []models.Reading) error
}

// Client delivers readings to the ingestion service over HTTP. Single
// and batch sends use separate timeouts; any transport error or non-2xx
// status counts as a delivery failure.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	sendTimeout  time.Duration
	batchTimeout time.Duration
}

// ClientConfig holds configuration for the delivery client
type ClientConfig struct {
	BaseURL      string
	SendTimeout  time.Duration
	BatchTimeout time.Duration
}

// NewClient creates a delivery client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 2 * time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 5 * time.Second
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{},
		sendTimeout:  cfg.SendTimeout,
		batchTimeout: cfg.BatchTimeout,
	}
}

// Send delivers one reading to POST /telemetry.
func (c *Client) Send(ctx context.Context, r models.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()
	return c.post(ctx, c.baseURL+"/telemetry", r)
}

// SendBatch delivers the whole buffer to POST /telemetry/batch.
func (c *Client) SendBatch(ctx context.Context, rs []models.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()
	return c.post(ctx, c.baseURL+"/telemetry/batch", rs)
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
