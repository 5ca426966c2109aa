package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrAPI = errors.New("coingecko api error")

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(client *http.Client, baseURL string, apiKey string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Get issues GET baseURL/endpoint?query and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d, body: %s", ErrAPI, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
