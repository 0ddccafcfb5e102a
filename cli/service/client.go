package service

import (
	"context"
	"fmt"
	"time"

	apiService "github.com/MinterTeam/minter-presale/api/v2/service"
	"github.com/MinterTeam/minter-presale/core/query"
	"github.com/go-resty/resty/v2"
)

// Client reads the node over its REST API
type Client struct {
	http *resty.Client
}

// APIError is the error body written by the gateway
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		if apiErr.Message == "" {
			apiErr.Code, apiErr.Message = resp.StatusCode(), resp.Status()
		}
		return apiErr
	}
	return nil
}

// Raw returns the undecoded body of a GET request
func (c *Client) Raw(ctx context.Context, path string) ([]byte, error) {
	apiErr := &APIError{}
	resp, err := c.http.R().SetContext(ctx).SetError(apiErr).Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if apiErr.Message == "" {
			apiErr.Code, apiErr.Message = resp.StatusCode(), resp.Status()
		}
		return nil, apiErr
	}
	return resp.Body(), nil
}

func (c *Client) Status(ctx context.Context) (*apiService.StatusResponse, error) {
	result := &apiService.StatusResponse{}
	if err := c.get(ctx, "/v2/status", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SaleConfig(ctx context.Context) (*query.SaleConfigResponse, error) {
	result := &query.SaleConfigResponse{}
	if err := c.get(ctx, "/v2/sale/config", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SaleStatus(ctx context.Context) (*query.SaleStatusResponse, error) {
	result := &query.SaleStatusResponse{}
	if err := c.get(ctx, "/v2/sale/status", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Participant(ctx context.Context, address string) (*query.ParticipantResponse, error) {
	result := &query.ParticipantResponse{}
	if err := c.get(ctx, "/v2/sale/participant/"+address, result); err != nil {
		return nil, err
	}
	return result, nil
}
