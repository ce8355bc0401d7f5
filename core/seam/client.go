package seam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// AccessCode is a PIN programmed on a device.
type AccessCode struct {
	ID       string     `json:"access_code_id"`
	DeviceID string     `json:"device_id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Status   string     `json:"status,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// CreateParams describes a new time-bound access code.
type CreateParams struct {
	DeviceID string    `json:"device_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// UpdateParams moves an existing access code's validity window.
type UpdateParams struct {
	AccessCodeID string    `json:"access_code_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
}

// Client talks to the lock provider with a single API key.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client authenticated with apiKey.
func NewClient(cfg Config, apiKey string) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		timeout: timeoutDuration,
		http:    &http.Client{Transport: transport},
	}
}

// ListAccessCodes returns every access code on a device.
func (c *Client) ListAccessCodes(ctx context.Context, deviceID string) ([]AccessCode, error) {
	var out struct {
		AccessCodes []AccessCode `json:"access_codes"`
	}
	if err := c.post(ctx, "list", "/access_codes/list", map[string]string{"device_id": deviceID}, &out); err != nil {
		return nil, err
	}
	return out.AccessCodes, nil
}

// CreateAccessCode programs a new code and returns it with its provider identifier.
func (c *Client) CreateAccessCode(ctx context.Context, params CreateParams) (*AccessCode, error) {
	var out struct {
		AccessCode *AccessCode `json:"access_code"`
	}
	if err := c.post(ctx, "create", "/access_codes/create", params, &out); err != nil {
		return nil, err
	}
	if out.AccessCode == nil || out.AccessCode.ID == "" {
		return nil, fmt.Errorf("seam create: response carried no access_code_id")
	}
	return out.AccessCode, nil
}

// UpdateAccessCode replaces a code's start and end timestamps.
func (c *Client) UpdateAccessCode(ctx context.Context, params UpdateParams) error {
	return c.post(ctx, "update", "/access_codes/update", params, nil)
}

// DeleteAccessCode removes a code from its device.
func (c *Client) DeleteAccessCode(ctx context.Context, accessCodeID string) error {
	return c.post(ctx, "delete", "/access_codes/delete", map[string]string{"access_code_id": accessCodeID}, nil)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("seam %s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("seam %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("seam %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("seam %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("seam %s: decode response: %w", op, err)
	}
	return nil
}
