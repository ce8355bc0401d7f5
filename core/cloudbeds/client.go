package cloudbeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"access-sync/core/utils"
)

// maxPages stops a listing whose source never reports a short page.
const maxPages = 1000

// APIError is returned for non-2xx responses and for envelopes reporting failure.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudbeds %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// envelope is the wrapper every endpoint answers with.
type envelope struct {
	Success any               `json:"success"`
	Message string            `json:"message"`
	Total   any               `json:"total"`
	Data    []json.RawMessage `json:"data"`
}

// Client talks to the reservation source.
type Client struct {
	cfg     Config
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.DetailBatchSize <= 0 {
		cfg.DetailBatchSize = 50
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeoutDuration,
		http:    &http.Client{Transport: transport},
	}
}

// Window returns the check-in range the snapshot covers, relative to today.
func (c *Client) Window(today time.Time) (from, to string) {
	return today.AddDate(0, 0, -c.cfg.DaysBack).Format(time.DateOnly),
		today.AddDate(0, 0, c.cfg.DaysAhead).Format(time.DateOnly)
}

// ListReservations pages through every reservation checking in between from
// and to, inclusive. Rows are returned undecoded so the caller decides how to
// handle malformed ones. Any page failure fails the whole listing.
func (c *Client) ListReservations(ctx context.Context, from, to string) ([]json.RawMessage, error) {
	var all []json.RawMessage

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("propertyID", c.cfg.PropertyID)
		if c.cfg.RoomTypeID != "" {
			q.Set("roomTypeID", c.cfg.RoomTypeID)
		}
		q.Set("checkInFrom", from)
		q.Set("checkInTo", to)
		q.Set("pageNumber", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))

		env, err := c.get(ctx, "getReservations", q)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, env.Data...)

		total := utils.ToInt(env.Total)
		if len(env.Data) < c.cfg.PageSize || (total > 0 && len(all) >= total) {
			return all, nil
		}
	}

	return nil, fmt.Errorf("cloudbeds getReservations: more than %d pages", maxPages)
}

// GetReservationDetails fetches full records for ids in batches.
func (c *Client) GetReservationDetails(ctx context.Context, ids []string) ([]json.RawMessage, error) {
	var all []json.RawMessage

	for start := 0; start < len(ids); start += c.cfg.DetailBatchSize {
		end := start + c.cfg.DetailBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		q := url.Values{}
		q.Set("propertyID", c.cfg.PropertyID)
		q.Set("reservationID", strings.Join(ids[start:end], ","))

		env, err := c.get(ctx, "getReservationsWithRateDetails", q)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		all = append(all, env.Data...)
	}

	return all, nil
}

// PutRoomBlock replaces a room block's reason text.
func (c *Client) PutRoomBlock(ctx context.Context, roomBlockID, reason string) error {
	body := RoomBlockUpdate{
		PropertyID:  c.cfg.PropertyID,
		RoomBlockID: roomBlockID,
		Reason:      reason,
	}
	_, err := c.do(ctx, "putRoomBlock", http.MethodPut, "/putRoomBlock", nil, body)
	return err
}

func (c *Client) get(ctx context.Context, op string, q url.Values) (*envelope, error) {
	return c.do(ctx, op, http.MethodGet, "/"+op, q, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body any) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cloudbeds %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("cloudbeds %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudbeds %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("cloudbeds %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("cloudbeds %s: decode response: %w", op, err)
	}
	if env.Success != nil && !utils.ToBool(env.Success) {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: env.Message}
	}
	return &env, nil
}
