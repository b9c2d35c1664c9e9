package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jeevanrakshak/donor-api/pkg/push"
)

const defaultEndpoint = "https://fcm.googleapis.com/fcm/send"

type Config struct {
	Endpoint  string
	ServerKey string
	Timeout   time.Duration
}

// Client sends device notifications through the FCM legacy HTTP API.
type Client struct {
	endpoint  string
	serverKey string
	client    *http.Client
	cb        *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "push-gateway",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
	})

	return &Client{
		endpoint:  endpoint,
		serverKey: cfg.ServerKey,
		client:    &http.Client{Timeout: timeout},
		cb:        cb,
	}
}

type sendRequest struct {
	RegistrationIDs []string     `json:"registration_ids"`
	Notification    push.Payload `json:"notification"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send dispatches one payload to every token in a single batch call. Per-token
// failures are reported in the result, never as an error.
func (c *Client) Send(ctx context.Context, tokens []string, payload push.Payload) (*push.BatchResult, error) {
	if len(tokens) == 0 {
		return &push.BatchResult{}, nil
	}

	body, err := json.Marshal(sendRequest{
		RegistrationIDs: tokens,
		Notification:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push request: %w", err)
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "key="+c.serverKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
		}

		var sr sendResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return nil, fmt.Errorf("failed to decode push response: %w", err)
		}
		return &push.BatchResult{SuccessCount: sr.Success, FailureCount: sr.Failure}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send push batch: %w", err)
	}

	return result.(*push.BatchResult), nil
}
