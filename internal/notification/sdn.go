package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"IntSentry/internal/config"
	"IntSentry/internal/model"
)

// SDNClient pushes attack reports to the SDN controller's HTTP interface.
// Calls happen synchronously on the capture worker, so the client always
// carries a bounded timeout.
type SDNClient struct {
	baseURL string
	client  *http.Client
}

// NewSDNClient creates a client for the configured controller endpoint.
func NewSDNClient(cfg config.SDNConfig) (*SDNClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("sdn url is not configured")
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return &SDNClient{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// PushAttack POSTs the report to the controller's /attack endpoint. The
// response body is not interpreted; any non-error status is success. Failed
// pushes are returned to the caller, never retried here.
func (c *SDNClient) PushAttack(report *model.AttackReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode attack report: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/attack", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to push attack to SDN controller: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("SDN controller rejected attack report: %s", resp.Status)
	}
	return nil
}
