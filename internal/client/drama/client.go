package drama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrServer              = errors.New("server error")
	ErrUpstream            = errors.New("upstream rejected request")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

type Client struct {
	baseURL      string
	hc           *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

func NewClient(cfg *Config) *Client {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff == 0 {
		retryBackoff = time.Second
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		hc:           &http.Client{Timeout: requestTimeout},
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// do issues one JSON request against the upstream API. Transport-level
// failures are retried with linear backoff; HTTP error statuses are not.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var reader *bytes.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			lastErr = err
			if attempt < c.maxRetries {
				select {
				case <-time.After(c.retryBackoff * time.Duration(attempt)):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}

		return c.decodeResponse(resp, out)
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, env.Error)
	}

	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("%w: %s", ErrUpstream, env.Error)
		}
		return ErrUpstream
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}

func statusError(statusCode int, message string) error {
	var sentinel error
	switch statusCode {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	default:
		sentinel = ErrServer
	}

	if message != "" {
		return fmt.Errorf("%w: %s", sentinel, message)
	}

	return fmt.Errorf("%w: status code %d", sentinel, statusCode)
}
