package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payment-service/src/pkg/log"

	"github.com/spf13/viper"
)

// Gateway is the slice of the external money-movement service this system
// depends on: send a payment, poll its status, push a payout. The service is
// opaque; correctness never assumes a timed-out call succeeded.
type Gateway interface {
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
	ChargeStatus(ctx context.Context, externalRef string) (*StatusResponse, error)
	SendPayout(ctx context.Context, req *PayoutRequest) (*PayoutResponse, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     log.Log
}

func NewClient(v *viper.Viper, logger log.Log) *Client {
	timeout := v.GetInt("paygate.timeout_seconds")
	if timeout <= 0 {
		timeout = 15
	}

	return &Client{
		baseURL: v.GetString("paygate.base_url"),
		apiKey:  v.GetString("paygate.api_key"),
		http: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		log: logger,
	}
}

func (c *Client) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	var resp ChargeResponse
	if err := c.post(ctx, "/v1/charges", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ChargeStatus(ctx context.Context, externalRef string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get(ctx, "/v1/charges/"+externalRef, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendPayout(ctx context.Context, req *PayoutRequest) (*PayoutResponse, error) {
	var resp PayoutResponse
	if err := c.post(ctx, "/v1/payouts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("paygate", fmt.Sprintf("gateway call failed: %v", err), req.URL.Path, "")
		return fmt.Errorf("paygate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paygate read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr errorResponse
		if err := json.Unmarshal(data, &gwErr); err == nil && gwErr.Message != "" {
			return fmt.Errorf("paygate %s: %s (http %d)", req.URL.Path, gwErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("paygate %s: http %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("paygate decode response: %w", err)
	}

	return nil
}
